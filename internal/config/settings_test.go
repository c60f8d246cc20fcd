package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Config != DefaultTaskFile || s.Log.Level != "warn" || s.Progress || s.MetricsFile != "" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".taskrun.yaml")
	content := "config: build.cue\nlog:\n  level: warn\n  json: true\nprogress: true\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TASKRUN_LOG__LEVEL", "debug")
	t.Setenv("TASKRUN_METRICS_FILE", "metrics.prom")

	s, err := LoadSettings(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Config != "build.cue" {
		t.Fatalf("config: %q", s.Config)
	}
	if s.Log.Level != "debug" || !s.Log.JSON {
		t.Fatalf("log: %+v", s.Log)
	}
	if !s.Progress || s.MetricsFile != "metrics.prom" {
		t.Fatalf("settings: %+v", s)
	}
}

func TestLoadSettings_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".taskrun.yaml")
	if err := os.WriteFile(p, []byte("log: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSettings(p); err == nil {
		t.Fatalf("expected parse error")
	}
}
