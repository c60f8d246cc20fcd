package builtin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/flarebyte/taskrun/internal/luasandbox"
	"github.com/flarebyte/taskrun/internal/plugin"
)

const (
	lintPlugin      = "lint"
	severityError   = "error"
	severityWarning = "warning"
)

type lintRule struct {
	name     string
	script   string
	severity string
}

type lintProblem struct {
	path     string
	rule     string
	severity string
	message  string
}

func (p lintProblem) String() string {
	return fmt.Sprintf("%s: %s %s: %s", p.path, p.severity, p.rule, p.message)
}

// lint: run Lua rules over each loaded file. A rule sees the globals path
// and data and returns nil or true when the file passes, false or a
// message (or a list of messages) when it does not.
func lintFactory(opts Options, deps Deps) (plugin.Func, error) {
	rules, err := parseLintRules(opts)
	if err != nil {
		return nil, err
	}
	ignores, err := opts.Strings("ignore")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", lintPlugin, err)
	}
	sandbox, err := sandboxOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", lintPlugin, err)
	}
	ignore := newGlobSet(ignores)
	root := deps.root()

	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		if len(p.Files) == 0 {
			p.LogMessage(shrug)
			return plugin.FilesResult(p.Files), nil
		}
		var problems []lintProblem
		for _, f := range p.Files {
			if !ignore.empty() && ignore.match(relTo(root, f.Path), false) {
				continue
			}
			if !f.Loaded() {
				return plugin.Result{}, fmt.Errorf("%s: %s: no data", lintPlugin, f.Path)
			}
			for _, r := range rules {
				found, err := runLintRule(ctx, sandbox, r, f)
				if err != nil {
					return plugin.Result{}, err
				}
				problems = append(problems, found...)
			}
		}
		errorCount := 0
		for _, pr := range problems {
			p.LogMessage(pr.String())
			if pr.severity == severityError {
				errorCount++
			}
		}
		if errorCount > 0 {
			return plugin.Result{}, fmt.Errorf("%d error(s)", errorCount)
		}
		if len(problems) == 0 {
			p.LogMessage(shrug)
		}
		return plugin.FilesResult(p.Files), nil
	}, nil
}

func parseLintRules(opts Options) ([]lintRule, error) {
	items, err := opts.List("rules")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", lintPlugin, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: missing required option: rules", lintPlugin)
	}
	rules := make([]lintRule, 0, len(items))
	for i, it := range items {
		name, err := it.String("name", fmt.Sprintf("rule-%d", i+1))
		if err != nil {
			return nil, fmt.Errorf("%s: %v", lintPlugin, err)
		}
		script, err := it.String("script", "")
		if err != nil {
			return nil, fmt.Errorf("%s: %v", lintPlugin, err)
		}
		if script == "" {
			return nil, fmt.Errorf("%s: rule %s: missing script", lintPlugin, name)
		}
		sev, err := it.String("severity", severityError)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", lintPlugin, err)
		}
		if sev != severityError && sev != severityWarning {
			return nil, fmt.Errorf("%s: rule %s: invalid severity: %s", lintPlugin, name, sev)
		}
		rules = append(rules, lintRule{name: name, script: luasandbox.Expression(script), severity: sev})
	}
	return rules, nil
}

func runLintRule(ctx context.Context, opts luasandbox.Options, r lintRule, f plugin.File) ([]lintProblem, error) {
	ret, violation, err := luasandbox.Run(ctx, opts, r.name+"\x00"+f.Path, map[string]any{
		"path": f.Path,
		"data": string(f.Data),
	}, r.script)
	if err != nil {
		return nil, fmt.Errorf("%s: rule %s: %v", lintPlugin, r.name, err)
	}
	if violation != "" {
		return nil, fmt.Errorf("%s: rule %s: %s", lintPlugin, r.name, violation)
	}
	problem := func(msg string) lintProblem {
		return lintProblem{path: f.Path, rule: r.name, severity: r.severity, message: msg}
	}
	switch x := ret.(type) {
	case nil:
		return nil, nil
	case bool:
		if x {
			return nil, nil
		}
		return []lintProblem{problem("failed")}, nil
	case string:
		return []lintProblem{problem(x)}, nil
	case []any:
		out := make([]lintProblem, 0, len(x))
		for _, it := range x {
			out = append(out, problem(fmt.Sprint(it)))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: rule %s: unexpected result type %T", lintPlugin, r.name, ret)
	}
}

// relTo returns p relative to root when possible, slash separated.
func relTo(root, p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(absRoot, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// sandboxOptions reads the optional sandbox section shared by Lua plugins.
func sandboxOptions(opts Options) (luasandbox.Options, error) {
	out := luasandbox.Defaults()
	sb, err := opts.Sub("sandbox")
	if err != nil {
		return out, err
	}
	if out.TimeoutMs, err = sb.Int("timeoutMs", out.TimeoutMs); err != nil {
		return out, err
	}
	if out.MemoryLimitBytes, err = sb.Int("memoryLimitBytes", out.MemoryLimitBytes); err != nil {
		return out, err
	}
	if out.DeterministicRandom, err = sb.Bool("deterministicRandom", out.DeterministicRandom); err != nil {
		return out, err
	}
	return out, nil
}

func init() { Register(lintPlugin, lintFactory) }
