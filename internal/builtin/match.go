package builtin

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// globSet matches slash paths against an ordered list of glob patterns.
// Later patterns win; a leading "!" removes earlier matches.
type globSet struct {
	patterns []gitignore.Pattern
}

func newGlobSet(globs []string) globSet {
	ps := make([]gitignore.Pattern, 0, len(globs))
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(g, nil))
	}
	return globSet{patterns: ps}
}

func (s globSet) empty() bool { return len(s.patterns) == 0 }

// match reports whether rel (slash separated) is selected by the set.
func (s globSet) match(rel string, isDir bool) bool {
	parts := splitSlash(rel)
	matched := false
	for _, p := range s.patterns {
		switch p.Match(parts, isDir) {
		case gitignore.Exclude:
			matched = true
		case gitignore.Include:
			matched = false
		}
	}
	return matched
}

func splitSlash(rel string) []string {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}

// readGitignorePatterns reads .gitignore files from root down to the
// directory holding rel.
func readGitignorePatterns(root, rel string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	dirs := []string{"."}
	cur := ""
	parts := splitSlash(rel)
	for i := 0; i+1 < len(parts); i++ {
		cur = strings.TrimPrefix(cur+"/"+parts[i], "/")
		dirs = append(dirs, cur)
	}
	for _, d := range dirs {
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(d), ".gitignore"))
		if err != nil {
			continue
		}
		var base []string
		if d != "." {
			base = strings.Split(d, "/")
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, base))
		}
	}
	return patterns
}

// gitignored reports whether rel is ignored by .gitignore files under root.
func gitignored(root, rel string, isDir bool) bool {
	patterns := readGitignorePatterns(root, rel)
	if len(patterns) == 0 {
		return false
	}
	return gitignore.NewMatcher(patterns).Match(splitSlash(rel), isDir)
}
