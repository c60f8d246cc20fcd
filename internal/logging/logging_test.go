package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/flarebyte/taskrun/internal/plugin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		" WARN": slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigure_JSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", JSON: true, Writer: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	L().Info("hidden")
	L().Warn("shown", "k", "v")
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestAttach_LogsEvents(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rep := plugin.NewReporter()
	detach := Attach(rep, l)

	rep.Emit(plugin.Event{Kind: plugin.EventStart, Plugin: "read"})
	rep.Emit(plugin.Event{Kind: plugin.EventFile, Plugin: "read", Path: "a.txt"})
	rep.Emit(plugin.Event{Kind: plugin.EventError, Plugin: "read", Err: errors.New("boom")})
	detach()
	rep.Emit(plugin.Event{Kind: plugin.EventDone, Plugin: "read"})

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), out)
	}
	for _, want := range []string{"run_id=" + rep.RunID().String(), "plugin=read", "event=start", "path=a.txt", "err=boom", "silent=false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestAttach_SkipsBelowDebug(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	rep := plugin.NewReporter()
	Attach(rep, l)
	rep.Emit(plugin.Event{Kind: plugin.EventStart, Plugin: "read"})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
