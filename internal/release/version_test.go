package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	cases := []struct {
		version string
		bump    BumpType
		want    string
	}{
		{"1.2.3", BumpPatch, "1.2.4"},
		{"1.2.3", BumpMinor, "1.3.0"},
		{"1.2.3", BumpMajor, "2.0.0"},
		{"v1.2.3", BumpPatch, "1.2.4"},
		{"0.4.1", BumpMajor, "0.5.0"},
		{"1.2.3-beta.1", BumpPatch, "1.2.4"},
	}
	for _, c := range cases {
		got, err := NextVersion(c.version, c.bump, BumpMinor)
		require.NoError(t, err, c.version)
		assert.Equal(t, c.want, got, "%s %s", c.version, c.bump)
	}
}

func TestNextVersion_Invalid(t *testing.T) {
	_, err := NextVersion("one.two", BumpPatch, BumpMinor)
	assert.EqualError(t, err, "invalid version: one.two")
	_, err = NextVersion("1.0.0", BumpNone, BumpMinor)
	assert.Error(t, err)
}

func TestLog_Lines(t *testing.T) {
	p := DefaultPrefixes()
	l := NewLog(PackageBump{Type: BumpMinor, Next: "1.3.0"}, &GitBump{
		Type:     BumpMinor,
		Messages: []Message{{Kind: KindMinor, Value: "feature"}, {Kind: KindPatch, Value: "fix"}},
	})
	assert.Equal(t, []string{
		"minor → v1.3.0",
		p.Minor + " feature",
		p.Patch + " fix",
	}, l.Lines(p))
}

func TestLog_LinesKeepDependencyPrefix(t *testing.T) {
	dir, repo := initRepo(t)
	p := DefaultPrefixes()
	commitFile(t, dir, repo, "package.json", `{"version":"1.0.0"}`, p.Publish+" v1.0.0")
	commitFile(t, dir, repo, "go.sum", "x", p.Dependencies+" upgrade lodash")

	bump, err := RepoBump(repo, p)
	require.NoError(t, err)
	require.NotNil(t, bump)
	l := NewLog(PackageBump{Type: bump.Type, Next: "1.0.1"}, bump)
	assert.Equal(t, []string{"patch → v1.0.1", "♻️ upgrade lodash"}, l.Lines(p))
}
