package run

import (
	"fmt"
	"strings"

	"github.com/flarebyte/taskrun/internal/builtin"
	"github.com/flarebyte/taskrun/internal/config"
	"github.com/flarebyte/taskrun/internal/plugin"
)

// ErrUnknownTask is returned when a task name is not in the task file.
type ErrUnknownTask struct{ name string }

func (e ErrUnknownTask) Error() string { return "unknown task: " + e.name }

// Step is one compiled plugin step of a task.
type Step struct {
	Task   string
	Label  string
	Runner plugin.Runner
}

// Compile builds the runner for task: its steps chained in order, with
// referenced tasks expanded in place.
func Compile(f config.TaskFile, task string, deps builtin.Deps) (plugin.Runner, error) {
	steps, err := CompileSteps(f, task, deps)
	if err != nil {
		return nil, err
	}
	runners := make([]plugin.Runner, 0, len(steps))
	for _, s := range steps {
		runners = append(runners, s.Runner)
	}
	return plugin.Sequence(runners...), nil
}

// CompileSteps flattens task into its plugin steps. Task references are
// checked for cycles.
func CompileSteps(f config.TaskFile, task string, deps builtin.Deps) ([]Step, error) {
	c := compiler{file: f, deps: deps}
	if err := c.task(task, nil); err != nil {
		return nil, err
	}
	return c.steps, nil
}

type compiler struct {
	file  config.TaskFile
	deps  builtin.Deps
	steps []Step
}

func (c *compiler) task(name string, stack []string) error {
	for i, s := range stack {
		if s == name {
			cycle := append(append([]string{}, stack[i:]...), name)
			return fmt.Errorf("task cycle: %s", strings.Join(cycle, " -> "))
		}
	}
	t, ok := c.file.Tasks[name]
	if !ok {
		return ErrUnknownTask{name: name}
	}
	stack = append(stack[:len(stack):len(stack)], name)
	for i, s := range t.Steps {
		if s.IsTask() {
			if err := c.task(s.Task, stack); err != nil {
				return err
			}
			continue
		}
		r, err := builtin.Build(s.Plugin, s.Name, builtin.Options(s.Options), c.deps)
		if err != nil {
			return fmt.Errorf("task %s step %d: %w", name, i+1, err)
		}
		c.steps = append(c.steps, Step{Task: name, Label: s.Label(), Runner: r})
	}
	return nil
}

// seedFiles turns command line paths into the initial file collection.
func seedFiles(paths []string) []plugin.File {
	files := make([]plugin.File, 0, len(paths))
	for _, p := range paths {
		files = append(files, plugin.File{Path: p})
	}
	return files
}
