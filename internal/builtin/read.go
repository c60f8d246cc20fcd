package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const (
	readPlugin = "read"
	shrug      = "¯\\_(ツ)_/¯"
)

// resolve joins relative file paths onto root.
func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" || root == "." {
		return p
	}
	return filepath.Join(root, p)
}

func readFactory(_ Options, deps Deps) (plugin.Func, error) {
	root := deps.root()
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		if len(p.Files) == 0 {
			p.LogMessage(shrug)
			return plugin.Result{}, nil
		}
		out := make([]plugin.File, 0, len(p.Files))
		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return plugin.Result{}, err
			}
			b, err := os.ReadFile(resolve(root, f.Path))
			if err != nil {
				return plugin.Result{}, fmt.Errorf("%s: %v", readPlugin, err)
			}
			p.LogFile(f.Path)
			out = append(out, f.WithData(b))
		}
		return plugin.FilesResult(out), nil
	}, nil
}

func init() { Register(readPlugin, readFactory) }
