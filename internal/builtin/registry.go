package builtin

import (
	"io"
	"os"
	"sort"

	"github.com/flarebyte/taskrun/internal/plugin"
)

// Deps carries what factories need from the host process.
type Deps struct {
	Root   string
	Stdin  io.Reader
	Stdout io.Writer
}

func (d Deps) root() string {
	if d.Root == "" {
		return "."
	}
	return d.Root
}

func (d Deps) stdin() io.Reader {
	if d.Stdin == nil {
		return os.Stdin
	}
	return d.Stdin
}

func (d Deps) stdout() io.Writer {
	if d.Stdout == nil {
		return os.Stdout
	}
	return d.Stdout
}

// Factory builds the transform for one configured step.
type Factory func(opts Options, deps Deps) (plugin.Func, error)

var registry = map[string]Factory{}

// Register adds a plugin factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// Build creates a runner for the registered plugin, named label in events.
// An empty label falls back to the plugin name.
func Build(name, label string, opts Options, deps Deps) (plugin.Runner, error) {
	f, ok := registry[name]
	if !ok {
		return nil, ErrUnknown{name: name}
	}
	fn, err := f(opts, deps)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = name
	}
	return plugin.New(label, fn), nil
}

// Names lists registered plugins in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ErrUnknown is returned when a plugin is not registered.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown plugin: " + e.name }
