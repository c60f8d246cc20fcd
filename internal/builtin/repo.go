package builtin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/flarebyte/taskrun/internal/plugin"
	"github.com/flarebyte/taskrun/internal/release"
)

const (
	getRepoPackageBumpsPlugin    = "get-repo-package-bumps"
	publishRepoPromptPlugin      = "publish-repo-prompt"
	writeRepoPackageBumpPlugin   = "write-repo-package-bump"
	makeRepoCommitPlugin         = "make-repo-commit"
	publishRepoPackageBumpPlugin = "publish-repo-package-bump"

	packageBumpKey = "packageBump"
	gitBumpKey     = "gitBump"
)

var errNoBumps = errors.New("No bumps")

type repoOptions struct {
	manifest  string
	prefixes  release.Prefixes
	zeroMajor release.BumpType
	author    release.Author
}

func buildRepoOptions(opts Options, deps Deps) (repoOptions, error) {
	ro := repoOptions{prefixes: release.DefaultPrefixes(), zeroMajor: release.BumpMinor}
	manifest, err := opts.String("manifest", "package.json")
	if err != nil {
		return ro, err
	}
	ro.manifest = resolve(deps.root(), manifest)

	pm, err := opts.StringMap("prefixes")
	if err != nil {
		return ro, err
	}
	for k, v := range pm {
		switch k {
		case "major":
			ro.prefixes.Major = v
		case "minor":
			ro.prefixes.Minor = v
		case "patch":
			ro.prefixes.Patch = v
		case "dependencies":
			ro.prefixes.Dependencies = v
		case "publish":
			ro.prefixes.Publish = v
		default:
			return ro, fmt.Errorf("unknown prefix: %s", k)
		}
	}

	zb, err := opts.String("zeroBreakingChange", "minor")
	if err != nil {
		return ro, err
	}
	if b, ok := release.ParseBumpType(zb); ok {
		ro.zeroMajor = b
	} else {
		return ro, fmt.Errorf("invalid value for option: zeroBreakingChange")
	}

	author, err := opts.StringMap("author")
	if err != nil {
		return ro, err
	}
	ro.author = release.Author{Name: author["name"], Email: author["email"]}
	return ro, nil
}

func repoFactory(name string, build func(ro repoOptions, opts Options, deps Deps) (plugin.Func, error)) Factory {
	return func(opts Options, deps Deps) (plugin.Func, error) {
		ro, err := buildRepoOptions(opts, deps)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", name, err)
		}
		return build(ro, opts, deps)
	}
}

// bumpsFrom reads what get-repo-package-bumps left in props.
func bumpsFrom(name string, p plugin.Props) (release.PackageBump, *release.GitBump, error) {
	pv, _ := p.Value(packageBumpKey)
	pkg, ok := pv.(release.PackageBump)
	if !ok {
		return release.PackageBump{}, nil, fmt.Errorf("%s: missing %s (run %s first)", name, packageBumpKey, getRepoPackageBumpsPlugin)
	}
	gv, _ := p.Value(gitBumpKey)
	gb, _ := gv.(*release.GitBump)
	return pkg, gb, nil
}

func getRepoPackageBumps(ro repoOptions, _ Options, deps Deps) (plugin.Func, error) {
	root := deps.root()
	return func(ctx context.Context, _ plugin.Props) (plugin.Result, error) {
		if err := ctx.Err(); err != nil {
			return plugin.Result{}, err
		}
		repo, err := release.OpenRepo(root)
		if err != nil {
			return plugin.Result{}, err
		}
		gitBump, err := release.RepoBump(repo, ro.prefixes)
		if err != nil {
			return plugin.Result{}, err
		}
		if gitBump == nil {
			return plugin.Result{}, errNoBumps
		}
		pkg, err := release.PlanPackageBump(ro.manifest, gitBump, ro.zeroMajor)
		if err != nil {
			return plugin.Result{}, err
		}
		return plugin.ValuesResult(map[string]any{
			packageBumpKey: pkg,
			gitBumpKey:     gitBump,
		}), nil
	}, nil
}

func publishRepoPrompt(ro repoOptions, _ Options, deps Deps) (plugin.Func, error) {
	in := deps.stdin()
	out := deps.stdout()
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		pkg, gitBump, err := bumpsFrom(publishRepoPromptPlugin, p)
		if err != nil {
			return plugin.Result{}, err
		}
		log := release.NewLog(pkg, gitBump)
		lines := log.Lines(ro.prefixes)
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintf(out, "%s\n\n", lines[0])
		for _, l := range lines[1:] {
			_, _ = fmt.Fprintln(out, l)
		}
		_, _ = fmt.Fprintln(out)
		if !confirm(ctx, in, out, "Looks good?") {
			return plugin.Result{}, plugin.ErrCancel
		}
		return plugin.Result{}, nil
	}, nil
}

// confirm asks a yes/no question defaulting to yes. EOF and a done ctx
// count as no. The read is left behind when ctx ends first.
func confirm(ctx context.Context, in io.Reader, out io.Writer, question string) bool {
	if ctx.Err() != nil {
		return false
	}
	_, _ = fmt.Fprintf(out, "%s (Y/n) ", question)
	answer := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			close(answer)
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false
	case line, ok := <-answer:
		if !ok || ctx.Err() != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true
		}
		return false
	}
}

func writeRepoPackageBump(ro repoOptions, _ Options, deps Deps) (plugin.Func, error) {
	root := deps.root()
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		pkg, _, err := bumpsFrom(writeRepoPackageBumpPlugin, p)
		if err != nil {
			return plugin.Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return plugin.Result{}, err
		}
		repo, err := release.OpenRepo(root)
		if err != nil {
			return plugin.Result{}, err
		}
		if err := release.WriteManifestVersion(pkg.Manifest, pkg.Next); err != nil {
			return plugin.Result{}, err
		}
		p.LogMessage("write package version")
		if err := ctx.Err(); err != nil {
			return plugin.Result{}, err
		}

		if _, err := release.WritePublishCommit(repo, pkg, ro.prefixes, ro.author); err != nil {
			return plugin.Result{}, err
		}
		p.LogMessage("write publish commit")

		p.LogMessage("write publish tag")
		if _, err := release.WritePublishTag(repo, pkg); err != nil {
			return plugin.Result{}, err
		}
		return plugin.Result{}, nil
	}, nil
}

func makeRepoCommit(ro repoOptions, opts Options, deps Deps) (plugin.Func, error) {
	message, err := opts.String("message", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", makeRepoCommitPlugin, err)
	}
	if message == "" {
		return nil, fmt.Errorf("%s: missing required option: message", makeRepoCommitPlugin)
	}
	kind, err := opts.String("type", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", makeRepoCommitPlugin, err)
	}
	if kind != "" {
		k, ok := release.ParseCommitKind(kind)
		if !ok {
			return nil, fmt.Errorf("%s: invalid value for option: type", makeRepoCommitPlugin)
		}
		message = ro.prefixes.For(k) + " " + message
	}
	root := deps.root()
	return func(ctx context.Context, _ plugin.Props) (plugin.Result, error) {
		if err := ctx.Err(); err != nil {
			return plugin.Result{}, err
		}
		repo, err := release.OpenRepo(root)
		if err != nil {
			return plugin.Result{}, err
		}
		_, err = release.Commit(repo, message, ro.author)
		return plugin.Result{}, err
	}, nil
}

func publishRepoPackageBump(ro repoOptions, opts Options, deps Deps) (plugin.Func, error) {
	execOpts := Options{"program": "npm", "args": []any{"publish"}}
	for _, k := range []string{"program", "args", "env", "timeoutMs"} {
		if v, ok := opts[k]; ok {
			execOpts[k] = v
		}
	}
	eo, err := buildExecOptions(execOpts, deps)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", publishRepoPackageBumpPlugin, err)
	}
	eo.workingDir = filepath.Dir(ro.manifest)
	return func(ctx context.Context, p plugin.Props) (plugin.Result, error) {
		return plugin.Result{}, runExec(ctx, p, eo, eo.argsT)
	}, nil
}

func init() {
	Register(getRepoPackageBumpsPlugin, repoFactory(getRepoPackageBumpsPlugin, getRepoPackageBumps))
	Register(publishRepoPromptPlugin, repoFactory(publishRepoPromptPlugin, publishRepoPrompt))
	Register(writeRepoPackageBumpPlugin, repoFactory(writeRepoPackageBumpPlugin, writeRepoPackageBump))
	Register(makeRepoCommitPlugin, repoFactory(makeRepoCommitPlugin, makeRepoCommit))
	Register(publishRepoPackageBumpPlugin, repoFactory(publishRepoPackageBumpPlugin, publishRepoPackageBump))
}
