package builtin

import (
	"context"
	"fmt"

	"github.com/flarebyte/taskrun/internal/luasandbox"
	"github.com/flarebyte/taskrun/internal/plugin"
)

const luaMapPlugin = "lua-map"

// lua-map: rewrite each file with a Lua script. The script sees path and
// data; it returns a string (new data), a table {path=, data=}, or nil to
// keep the file unchanged.
func luaMapFactory(opts Options, _ Deps) (plugin.Func, error) {
	script, err := opts.String("script", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", luaMapPlugin, err)
	}
	if script == "" {
		return nil, fmt.Errorf("%s: missing required option: script", luaMapPlugin)
	}
	sandbox, err := sandboxOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", luaMapPlugin, err)
	}
	code := luasandbox.Expression(script)

	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		if len(p.Files) == 0 {
			p.LogMessage(shrug)
			return plugin.Result{}, nil
		}
		out := make([]plugin.File, 0, len(p.Files))
		for _, f := range p.Files {
			nf, err := mapFile(ctx, sandbox, code, f)
			if err != nil {
				return plugin.Result{}, err
			}
			p.LogFile(nf.Path)
			out = append(out, nf)
		}
		return plugin.FilesResult(out), nil
	}, nil
}

func mapFile(ctx context.Context, opts luasandbox.Options, code string, f plugin.File) (plugin.File, error) {
	globals := map[string]any{"path": f.Path, "data": nil}
	if f.Loaded() {
		globals["data"] = string(f.Data)
	}
	ret, violation, err := luasandbox.Run(ctx, opts, luaMapPlugin+"\x00"+f.Path, globals, code)
	if err != nil {
		return plugin.File{}, fmt.Errorf("%s: %s: %v", luaMapPlugin, f.Path, err)
	}
	if violation != "" {
		return plugin.File{}, fmt.Errorf("%s: %s: %s", luaMapPlugin, f.Path, violation)
	}
	switch x := ret.(type) {
	case nil:
		return f, nil
	case string:
		return plugin.File{Path: f.Path, Data: []byte(x), Map: f.Map}, nil
	case map[string]any:
		nf := plugin.File{Path: f.Path, Data: f.Data, Map: f.Map}
		if s, ok := x["path"].(string); ok && s != "" {
			nf.Path = s
		}
		if v, ok := x["data"]; ok {
			s, ok := v.(string)
			if !ok {
				return plugin.File{}, fmt.Errorf("%s: %s: data must be a string", luaMapPlugin, f.Path)
			}
			nf.Data = []byte(s)
		}
		return nf, nil
	default:
		return plugin.File{}, fmt.Errorf("%s: %s: unexpected result type %T", luaMapPlugin, f.Path, ret)
	}
}

func init() { Register(luaMapPlugin, luaMapFactory) }
