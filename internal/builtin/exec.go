package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const (
	execPlugin = "exec"

	defaultExecTimeoutMs       = 60000
	defaultExecCaptureMaxBytes = 1 << 20
	defaultExecTermGraceMs     = 500
)

type execOptions struct {
	program         string
	argsT           []string
	perFile         bool
	workingDir      string
	env             map[string]string
	timeoutMs       int
	captureMaxBytes int
	termGraceMs     int
}

// exec: run an external program over the collection. Args may use {path}
// (per-file mode) and a standalone {files} argument expanding to every path.
func execFactory(opts Options, deps Deps) (plugin.Func, error) {
	eo, err := buildExecOptions(opts, deps)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", execPlugin, err)
	}
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		if !eo.perFile {
			if err := runExec(ctx, p, eo, renderExecArgs(eo.argsT, "", plugin.Paths(p.Files))); err != nil {
				return plugin.Result{}, err
			}
			return plugin.Result{}, nil
		}
		if len(p.Files) == 0 {
			p.LogMessage(shrug)
			return plugin.Result{}, nil
		}
		for _, f := range p.Files {
			if err := runExec(ctx, p, eo, renderExecArgs(eo.argsT, f.Path, []string{f.Path})); err != nil {
				return plugin.Result{}, err
			}
			p.LogFile(f.Path)
		}
		return plugin.Result{}, nil
	}, nil
}

func buildExecOptions(opts Options, deps Deps) (execOptions, error) {
	eo := execOptions{workingDir: deps.root()}
	var err error
	if eo.program, err = opts.String("program", ""); err != nil {
		return eo, err
	}
	if eo.program == "" {
		return eo, fmt.Errorf("missing required option: program")
	}
	if eo.argsT, err = opts.Strings("args"); err != nil {
		return eo, err
	}
	if eo.perFile, err = opts.Bool("perFile", false); err != nil {
		return eo, err
	}
	wd, err := opts.String("workingDir", "")
	if err != nil {
		return eo, err
	}
	if wd != "" {
		eo.workingDir = resolve(deps.root(), wd)
	}
	if eo.env, err = opts.StringMap("env"); err != nil {
		return eo, err
	}
	if eo.timeoutMs, err = opts.Int("timeoutMs", defaultExecTimeoutMs); err != nil {
		return eo, err
	}
	if eo.captureMaxBytes, err = opts.Int("captureMaxBytes", defaultExecCaptureMaxBytes); err != nil {
		return eo, err
	}
	if eo.termGraceMs, err = opts.Int("termGraceMs", defaultExecTermGraceMs); err != nil {
		return eo, err
	}
	return eo, nil
}

// renderExecArgs substitutes {path} and expands a standalone {files}.
func renderExecArgs(argsT []string, path string, files []string) []string {
	out := make([]string, 0, len(argsT)+len(files))
	for _, a := range argsT {
		if a == "{files}" {
			out = append(out, files...)
			continue
		}
		out = append(out, strings.ReplaceAll(a, "{path}", path))
	}
	return out
}

func runExec(ctx context.Context, p plugin.Props, eo execOptions, args []string) error {
	res, err := runCommand(ctx, eo, args)
	if err != nil {
		return fmt.Errorf("%s: %v", execPlugin, err)
	}
	if s := strings.TrimSpace(res.stdout); s != "" {
		if res.stdoutTruncated {
			s += " [truncated]"
		}
		p.LogMessage(s)
	}
	if res.timedOut {
		return fmt.Errorf("%s: timeout", execPlugin)
	}
	if res.exitCode != 0 {
		msg := fmt.Sprintf("%s: program %s exited with code %d", execPlugin, eo.program, res.exitCode)
		if s := sanitizeMessage(res.stderr); s != "" {
			msg += ": " + s
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func sanitizeMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}

func init() { Register(execPlugin, execFactory) }
