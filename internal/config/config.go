package config

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
)

// DefaultTaskFile is looked up in the working directory when no path is given.
const DefaultTaskFile = "taskrun.cue"

// TaskFile is the decoded task file.
type TaskFile struct {
	ConfigVersion string
	Tasks         map[string]Task
}

// Task is a named, ordered list of steps.
type Task struct {
	Name        string
	Description string
	Steps       []Step
}

// Step is either a plugin invocation or a reference to another task.
type Step struct {
	Plugin  string
	Name    string
	Options map[string]any
	Task    string
}

// IsTask reports whether the step runs another task.
func (s Step) IsTask() bool { return s.Task != "" }

// Label is the name the step reports events under.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.IsTask() {
		return s.Task
	}
	return s.Plugin
}

// Names returns task names in sorted order.
func (f TaskFile) Names() []string {
	out := make([]string, 0, len(f.Tasks))
	for n := range f.Tasks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoadTasks compiles the CUE task file at path and validates its schema.
// Required fields:
//   - configVersion: string
//   - tasks: struct of tasks, each with a steps list
func LoadTasks(path string) (TaskFile, error) {
	v, err := compileCUE(path)
	if err != nil {
		return TaskFile{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return TaskFile{}, err
	}
	var f TaskFile
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&f.ConfigVersion); err != nil {
		return TaskFile{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := checkTaskFileVersion(f.ConfigVersion); err != nil {
		return TaskFile{}, err
	}

	tv := v.LookupPath(cue.ParsePath("tasks"))
	if !tv.Exists() {
		return TaskFile{}, fmt.Errorf("missing required field: tasks")
	}
	if tv.Kind() != cue.StructKind {
		return TaskFile{}, fmt.Errorf("invalid type for field: tasks (expected struct)")
	}
	f.Tasks = map[string]Task{}
	it, err := tv.Fields()
	if err != nil {
		return TaskFile{}, fmt.Errorf("invalid value for tasks: %v", err)
	}
	for it.Next() {
		name := it.Selector().Unquoted()
		t, err := parseTask(name, it.Value())
		if err != nil {
			return TaskFile{}, err
		}
		f.Tasks[name] = t
	}
	return f, nil
}
