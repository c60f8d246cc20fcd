package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flarebyte/taskrun/internal/plugin"
)

type events struct {
	all []plugin.Event
}

func (e *events) of(kind plugin.EventKind) []plugin.Event {
	var out []plugin.Event
	for _, ev := range e.all {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (e *events) messages() []string {
	var out []string
	for _, ev := range e.of(plugin.EventMessage) {
		out = append(out, ev.Message)
	}
	return out
}

func (e *events) paths() []string {
	var out []string
	for _, ev := range e.of(plugin.EventFile) {
		out = append(out, ev.Path)
	}
	return out
}

// runPlugin builds name from the registry and runs it once over files.
func runPlugin(t *testing.T, name string, opts Options, deps Deps, files []plugin.File) (plugin.Props, *events, error) {
	t.Helper()
	r, err := Build(name, "", opts, deps)
	require.NoError(t, err)
	rep := plugin.NewReporter()
	ev := &events{}
	rep.Subscribe(func(e plugin.Event) { ev.all = append(ev.all, e) })
	out, err := r(context.Background(), plugin.Props{Files: files, Reporter: rep})
	return out, ev, err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}
