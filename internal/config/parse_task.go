package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

func parseTask(name string, v cue.Value) (Task, error) {
	t := Task{Name: name}
	field := func(f string) string { return "tasks." + name + "." + f }

	dv := v.LookupPath(cue.ParsePath("description"))
	if dv.Exists() {
		if dv.Kind() != cue.StringKind {
			return Task{}, fmt.Errorf("invalid type for field: %s (expected string)", field("description"))
		}
		if err := dv.Decode(&t.Description); err != nil {
			return Task{}, fmt.Errorf("invalid value for %s: %v", field("description"), err)
		}
	}

	sv := v.LookupPath(cue.ParsePath("steps"))
	if !sv.Exists() {
		return Task{}, fmt.Errorf("missing required field: %s", field("steps"))
	}
	if sv.Kind() != cue.ListKind {
		return Task{}, fmt.Errorf("invalid type for field: %s (expected list)", field("steps"))
	}
	items, err := sv.List()
	if err != nil {
		return Task{}, fmt.Errorf("invalid value for %s: %v", field("steps"), err)
	}
	for i := 0; items.Next(); i++ {
		s, err := parseStep(fmt.Sprintf("%s[%d]", field("steps"), i), items.Value())
		if err != nil {
			return Task{}, err
		}
		t.Steps = append(t.Steps, s)
	}
	return t, nil
}

// parseStep accepts {plugin, name?, options?} or {task, name?}.
func parseStep(path string, v cue.Value) (Step, error) {
	if v.Kind() != cue.StructKind {
		return Step{}, fmt.Errorf("invalid type for field: %s (expected struct)", path)
	}
	var s Step
	if err := optionalString(v, path, "plugin", &s.Plugin); err != nil {
		return Step{}, err
	}
	if err := optionalString(v, path, "task", &s.Task); err != nil {
		return Step{}, err
	}
	if err := optionalString(v, path, "name", &s.Name); err != nil {
		return Step{}, err
	}
	switch {
	case s.Plugin == "" && s.Task == "":
		return Step{}, fmt.Errorf("missing required field: %s.plugin", path)
	case s.Plugin != "" && s.Task != "":
		return Step{}, fmt.Errorf("invalid step: %s (plugin and task are exclusive)", path)
	}

	ov := v.LookupPath(cue.ParsePath("options"))
	if ov.Exists() {
		if s.IsTask() {
			return Step{}, fmt.Errorf("invalid step: %s (options require plugin)", path)
		}
		if ov.Kind() != cue.StructKind {
			return Step{}, fmt.Errorf("invalid type for field: %s.options (expected struct)", path)
		}
		if err := ov.Decode(&s.Options); err != nil {
			return Step{}, fmt.Errorf("invalid value for %s.options: %v", path, err)
		}
	}
	return s, nil
}

func optionalString(v cue.Value, path, name string, dst *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s.%s (expected string)", path, name)
	}
	return f.Decode(dst)
}
