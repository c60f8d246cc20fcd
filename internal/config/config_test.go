package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleTasks = `
configVersion: "1"
tasks: {
	build: {
		description: "lint and copy sources"
		steps: [
			{plugin: "find", options: {glob: ["*.go", "!vendor/"]}},
			{plugin: "read"},
			{plugin: "lint", name: "lint go", options: {
				rules: [{name: "no-todo", script: "not string.find(data, \"TODO\")", severity: "warning"}]
				sandbox: {timeoutMs: 500}
			}},
			{task: "publish"},
		]
	}
	publish: steps: [{plugin: "write", options: outDir: "dist"}]
}
`

func TestLoadTasks_Sample(t *testing.T) {
	f, err := LoadTasks(writeTaskFile(t, sampleTasks))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := f.Names(), []string{"build", "publish"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names: got %v want %v", got, want)
	}
	build := f.Tasks["build"]
	if build.Description != "lint and copy sources" {
		t.Fatalf("description: %q", build.Description)
	}
	if len(build.Steps) != 4 {
		t.Fatalf("steps: got %d", len(build.Steps))
	}
	if s := build.Steps[0]; s.Plugin != "find" || s.Label() != "find" {
		t.Fatalf("step 0: %+v", s)
	}
	globs, ok := build.Steps[0].Options["glob"].([]any)
	if !ok || len(globs) != 2 || globs[1] != "!vendor/" {
		t.Fatalf("glob option: %#v", build.Steps[0].Options["glob"])
	}
	if s := build.Steps[2]; s.Label() != "lint go" {
		t.Fatalf("step 2 label: %q", s.Label())
	}
	if s := build.Steps[3]; !s.IsTask() || s.Task != "publish" || s.Label() != "publish" {
		t.Fatalf("step 3: %+v", s)
	}
	if got := f.Tasks["publish"].Steps[0].Options["outDir"]; got != "dist" {
		t.Fatalf("publish outDir: %v", got)
	}
}

func TestLoadTasks_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"missing version", `tasks: {}`, "missing required field: configVersion"},
		{"version type", `configVersion: 1, tasks: {}`, "invalid type for field: configVersion (expected string)"},
		{"missing tasks", `configVersion: "1"`, "missing required field: tasks"},
		{"missing steps", `configVersion: "1", tasks: a: {}`, "missing required field: tasks.a.steps"},
		{"steps type", `configVersion: "1", tasks: a: steps: "x"`, "invalid type for field: tasks.a.steps (expected list)"},
		{"empty step", `configVersion: "1", tasks: a: steps: [{}]`, "missing required field: tasks.a.steps[0].plugin"},
		{"both kinds", `configVersion: "1", tasks: a: steps: [{plugin: "read", task: "b"}]`, "invalid step: tasks.a.steps[0] (plugin and task are exclusive)"},
		{"plugin type", `configVersion: "1", tasks: a: steps: [{plugin: 3}]`, "invalid type for field: tasks.a.steps[0].plugin (expected string)"},
		{"description type", `configVersion: "1", tasks: a: {description: 3, steps: []}`, "invalid type for field: tasks.a.description (expected string)"},
		{"open description", `configVersion: "1", tasks: a: {description: string, steps: []}`, "invalid type for field: tasks.a.description (expected string)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTasks(writeTaskFile(t, tc.content))
			if err == nil || err.Error() != tc.want {
				t.Fatalf("want %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadTasks_BadFile(t *testing.T) {
	if _, err := LoadTasks(filepath.Join(t.TempDir(), "tasks.yaml")); err == nil ||
		!strings.Contains(err.Error(), "expected .cue") {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, err := LoadTasks(filepath.Join(t.TempDir(), "none.cue")); err == nil ||
		!strings.HasPrefix(err.Error(), "failed to read task file") {
		t.Fatalf("expected read error, got %v", err)
	}
	if _, err := LoadTasks(writeTaskFile(t, "tasks: {")); err == nil ||
		!strings.HasPrefix(err.Error(), "invalid task file") {
		t.Fatalf("expected compile error, got %v", err)
	}
}
