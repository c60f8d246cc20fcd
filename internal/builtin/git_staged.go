package builtin

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const findGitStagedPlugin = "find-git-staged"

// stagedCodes mirrors `git diff --cached --diff-filter=ACM`.
var stagedCodes = map[git.StatusCode]bool{
	git.Added:    true,
	git.Copied:   true,
	git.Modified: true,
}

// find-git-staged: list staged files matching the glob list.
func findGitStagedFactory(opts Options, deps Deps) (plugin.Func, error) {
	globs, err := opts.Strings("glob")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", findGitStagedPlugin, err)
	}
	if len(globs) == 0 {
		return nil, fmt.Errorf("%s: missing required option: glob", findGitStagedPlugin)
	}
	set := newGlobSet(globs)
	root := deps.root()

	return func(_ context.Context, p plugin.Props) (plugin.Result, error) {
		repoRoot, staged, err := stagedFiles(root)
		if err != nil {
			return plugin.Result{}, err
		}
		files := make([]plugin.File, 0, len(staged))
		for _, rel := range staged {
			if !set.match(rel, false) {
				continue
			}
			path := filepath.Join(repoRoot, filepath.FromSlash(rel))
			p.LogFile(path)
			files = append(files, plugin.File{Path: path})
		}
		return plugin.FilesResult(files), nil
	}, nil
}

// stagedFiles returns the worktree root and the sorted staged paths,
// relative to it and slash separated.
func stagedFiles(root string) (string, []string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", nil, fmt.Errorf("%s: git repo open failed: %v", findGitStagedPlugin, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", nil, fmt.Errorf("%s: git worktree: %v", findGitStagedPlugin, err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", nil, fmt.Errorf("%s: git status failed: %v", findGitStagedPlugin, err)
	}
	var out []string
	for path, st := range status {
		if stagedCodes[st.Staging] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return wt.Filesystem.Root(), out, nil
}

func init() { Register(findGitStagedPlugin, findGitStagedFactory) }
