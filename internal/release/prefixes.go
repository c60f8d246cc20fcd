package release

import "strings"

// BumpType orders version bumps from none to major.
type BumpType int

const (
	BumpNone BumpType = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (b BumpType) String() string {
	switch b {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "none"
	}
}

// ParseBumpType maps "major", "minor", "patch" to a BumpType.
func ParseBumpType(s string) (BumpType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return BumpMajor, true
	case "minor":
		return BumpMinor, true
	case "patch":
		return BumpPatch, true
	}
	return BumpNone, false
}

// CommitKind is the category a commit prefix puts a commit in.
type CommitKind string

const (
	KindMajor        CommitKind = "major"
	KindMinor        CommitKind = "minor"
	KindPatch        CommitKind = "patch"
	KindDependencies CommitKind = "dependencies"
)

// ParseCommitKind maps "major", "minor", "patch", "dependencies" to a kind.
func ParseCommitKind(s string) (CommitKind, bool) {
	switch k := CommitKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindMajor, KindMinor, KindPatch, KindDependencies:
		return k, true
	}
	return "", false
}

// Bump is the version bump a commit of kind k calls for. Dependency
// updates weigh as a patch.
func (k CommitKind) Bump() BumpType {
	switch k {
	case KindMajor:
		return BumpMajor
	case KindMinor:
		return BumpMinor
	case KindPatch, KindDependencies:
		return BumpPatch
	}
	return BumpNone
}

// Prefixes are the commit subject prefixes that drive version bumps.
type Prefixes struct {
	Major        string
	Minor        string
	Patch        string
	Dependencies string
	Publish      string
}

// DefaultPrefixes returns the emoji prefix convention.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		Major:        "💥",
		Minor:        "➕",
		Patch:        "✔️",
		Dependencies: "♻️",
		Publish:      "📦",
	}
}

// For returns the prefix used for a commit kind.
func (p Prefixes) For(k CommitKind) string {
	switch k {
	case KindMajor:
		return p.Major
	case KindMinor:
		return p.Minor
	case KindPatch:
		return p.Patch
	case KindDependencies:
		return p.Dependencies
	}
	return ""
}

// classify returns the kind of a commit subject and the subject without its
// prefix.
func (p Prefixes) classify(subject string) (CommitKind, string, bool) {
	for _, k := range []CommitKind{KindMajor, KindMinor, KindPatch, KindDependencies} {
		prefix := p.For(k)
		if prefix != "" && strings.HasPrefix(subject, prefix) {
			return k, strings.TrimSpace(strings.TrimPrefix(subject, prefix)), true
		}
	}
	return "", subject, false
}

func (p Prefixes) isPublish(subject string) bool {
	return p.Publish != "" && strings.HasPrefix(subject, p.Publish)
}
