package builtin

import (
	"context"
	"fmt"
	"os"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const cleanPlugin = "clean"

// clean: recursively delete every file in the collection.
func cleanFactory(_ Options, deps Deps) (plugin.Func, error) {
	root := deps.root()
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return plugin.Result{}, err
			}
			if err := os.RemoveAll(resolve(root, f.Path)); err != nil {
				return plugin.Result{}, fmt.Errorf("%s: %v", cleanPlugin, err)
			}
			p.LogMessage(f.Path)
		}
		return plugin.FilesResult(p.Files), nil
	}, nil
}

func init() { Register(cleanPlugin, cleanFactory) }
