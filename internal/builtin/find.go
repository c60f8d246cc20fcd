package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const findPlugin = "find"

// find: collect regular files under root matching the glob list.
// .gitignore files are honored unless noGitignore is set.
func findFactory(opts Options, deps Deps) (plugin.Func, error) {
	globs, err := opts.Strings("glob")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", findPlugin, err)
	}
	if len(globs) == 0 {
		return nil, fmt.Errorf("%s: missing required option: glob", findPlugin)
	}
	noGitignore, err := opts.Bool("noGitignore", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", findPlugin, err)
	}
	set := newGlobSet(globs)
	root := deps.root()

	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		locators, err := findFiles(ctx, root, set, noGitignore)
		if err != nil {
			return plugin.Result{}, err
		}
		files := make([]plugin.File, 0, len(locators))
		for _, l := range locators {
			p.LogFile(l)
			files = append(files, plugin.File{Path: l})
		}
		return plugin.FilesResult(files), nil
	}, nil
}

func findFiles(ctx context.Context, root string, set globSet, noGitignore bool) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == absRoot {
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		isDir := d.IsDir()
		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}
		if !noGitignore && gitignored(absRoot, rel, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}
		if isDir || !d.Type().IsRegular() {
			return nil
		}
		if set.match(rel, false) {
			out = append(out, filepath.Join(root, filepath.FromSlash(rel)))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %v", findPlugin, err)
	}
	sort.Strings(out)
	return out, nil
}

func init() { Register(findPlugin, findFactory) }
