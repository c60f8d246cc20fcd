package run

import (
	"context"
	"errors"
	"testing"

	"github.com/flarebyte/taskrun/internal/plugin"
)

func assertExitError(t *testing.T, err error, wantMsg string, wantCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != wantMsg {
		t.Fatalf("unexpected error: %q", err.Error())
	}
	var ee runExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected runExitError, got %T", err)
	}
	if ee.ExitCode() != wantCode {
		t.Fatalf("unexpected exit code: got %d want %d", ee.ExitCode(), wantCode)
	}
}

func TestEvaluateRunExit_Success(t *testing.T) {
	if err := evaluateRunExit(context.Background(), "build", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestEvaluateRunExit_Reported(t *testing.T) {
	err := evaluateRunExit(context.Background(), "build", plugin.ErrReported)
	assertExitError(t, err, "task build failed", exitCodeFailed)
}

func TestEvaluateRunExit_SilentAbort(t *testing.T) {
	err := evaluateRunExit(context.Background(), "release", plugin.ErrSilentAbort)
	assertExitError(t, err, "", exitCodeAborted)
}

func TestEvaluateRunExit_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := evaluateRunExit(ctx, "build", plugin.ErrReported)
	assertExitError(t, err, "task build interrupted", exitCodeInterrupted)
}
