package release

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// PackageBump is the version change planned for one package manifest.
type PackageBump struct {
	Name     string   `json:"name"`
	Manifest string   `json:"manifest"`
	Type     BumpType `json:"type"`
	Version  string   `json:"version"`
	Next     string   `json:"next"`
}

// NextVersion applies bump to version. On 0.x versions a major bump is
// demoted to zeroMajor (minor unless told otherwise), since 0.x versions
// carry breaking changes in the minor number.
func NextVersion(version string, bump BumpType, zeroMajor BumpType) (string, error) {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version: %s", version)
	}
	core := strings.TrimPrefix(semver.Canonical(v), "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return "", fmt.Errorf("invalid version: %s", version)
		}
		nums[i] = n
	}
	if nums[0] == 0 && bump == BumpMajor && zeroMajor != BumpNone {
		bump = zeroMajor
	}
	switch bump {
	case BumpMajor:
		nums[0], nums[1], nums[2] = nums[0]+1, 0, 0
	case BumpMinor:
		nums[1], nums[2] = nums[1]+1, 0
	case BumpPatch:
		nums[2]++
	default:
		return "", fmt.Errorf("no bump for version %s", version)
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]), nil
}

// PlanPackageBump reads the manifest and computes its next version.
func PlanPackageBump(manifest string, bump *GitBump, zeroMajor BumpType) (PackageBump, error) {
	m, err := ReadManifest(manifest)
	if err != nil {
		return PackageBump{}, err
	}
	next, err := NextVersion(m.Version, bump.Type, zeroMajor)
	if err != nil {
		return PackageBump{}, fmt.Errorf("%s: %v", manifest, err)
	}
	return PackageBump{
		Name:     m.Name,
		Manifest: manifest,
		Type:     bump.Type,
		Version:  m.Version,
		Next:     next,
	}, nil
}

// Log is the human summary shown before publishing.
type Log struct {
	Type     string
	Version  string
	Messages []Message
}

// NewLog builds the summary for a planned bump.
func NewLog(pkg PackageBump, bump *GitBump) Log {
	l := Log{Type: pkg.Type.String(), Version: pkg.Next}
	if bump != nil {
		l.Messages = append(l.Messages, bump.Messages...)
	}
	return l
}

// Lines renders the summary with each message behind its commit prefix.
func (l Log) Lines(prefixes Prefixes) []string {
	out := []string{fmt.Sprintf("%s → v%s", l.Type, l.Version)}
	for _, m := range l.Messages {
		out = append(out, strings.TrimSpace(prefixes.For(m.Kind)+" "+m.Value))
	}
	return out
}
