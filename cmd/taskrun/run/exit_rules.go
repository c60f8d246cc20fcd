package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const (
	exitCodeSuccess     = 0
	exitCodeFailed      = 1
	exitCodeAborted     = 2
	exitCodeInterrupted = 130
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// evaluateRunExit maps the pipeline outcome onto the process exit.
// A reported failure was already shown through the reporter, so the
// message only names the task. A silent abort has no message at all.
func evaluateRunExit(ctx context.Context, task string, err error) error {
	if err == nil {
		return nil
	}
	if ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return runExitError{code: exitCodeInterrupted, msg: fmt.Sprintf("task %s interrupted", task)}
	}
	if plugin.IsSilent(err) {
		return runExitError{code: exitCodeAborted}
	}
	return runExitError{code: exitCodeFailed, msg: fmt.Sprintf("task %s failed", task)}
}
