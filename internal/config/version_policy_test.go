package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTaskFile(t *testing.T, content string) string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "taskrun.cue")
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return cfg
}

func TestLoadTasks_UnknownConfigVersion(t *testing.T) {
	cfg := writeTaskFile(t, "{\n  configVersion: \"2\"\n  tasks: {}\n}\n")
	_, err := LoadTasks(cfg)
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "unsupported configVersion: \"2\" (supported: 1)"
	if err.Error() != want {
		t.Fatalf("unexpected error\nwant: %s\n got: %s", want, err.Error())
	}
}

func TestCheckTaskFileVersion(t *testing.T) {
	if err := checkTaskFileVersion(TaskFileVersion); err != nil {
		t.Fatalf("current version rejected: %v", err)
	}
	if err := checkTaskFileVersion(""); err == nil {
		t.Fatalf("empty version must be rejected")
	}
}
