package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const writePlugin = "write"

// write: store each file's data, in place or under outDir. With outDir set,
// the file path is rebased from base (default root) to outDir and the
// returned files carry the new paths.
func writeFactory(opts Options, deps Deps) (plugin.Func, error) {
	outDir, err := opts.String("outDir", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", writePlugin, err)
	}
	base, err := opts.String("base", deps.root())
	if err != nil {
		return nil, fmt.Errorf("%s: %v", writePlugin, err)
	}
	root := deps.root()
	if outDir != "" {
		outDir = resolve(root, outDir)
		base = resolve(root, base)
	}

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
			if !f.Loaded() {
				return plugin.Result{}, fmt.Errorf("%s: %s: no data", writePlugin, f.Path)
			}
			dst := resolve(root, f.Path)
			if outDir != "" {
				rel, err := relPath(base, dst)
				if err != nil {
					return plugin.Result{}, fmt.Errorf("%s: %v", writePlugin, err)
				}
				dst = filepath.Join(outDir, rel)
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return plugin.Result{}, fmt.Errorf("%s: %v", writePlugin, err)
			}
			if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
				return plugin.Result{}, fmt.Errorf("%s: %v", writePlugin, err)
			}
			p.LogFile(dst)
			nf := f
			if outDir != "" {
				nf.Path = dst
			}
			out = append(out, nf)
		}
		return plugin.FilesResult(out), nil
	}, nil
}

// relPath is filepath.Rel over absolute forms of both paths.
func relPath(base, target string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absBase, absTarget)
}

func init() { Register(writePlugin, writeFactory) }
