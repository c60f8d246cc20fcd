package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"
)

type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

type commandResult struct {
	exitCode        int
	stdout          string
	stderr          string
	stdoutTruncated bool
	timedOut        bool
}

// runCommand executes the program with a timeout, terminating the process
// group with SIGTERM then SIGKILL after the grace period.
func runCommand(ctx context.Context, eo execOptions, args []string) (commandResult, error) {
	cmd := exec.Command(eo.program, args...)
	cmd.Dir = eo.workingDir
	cmd.Env = applyEnvOverlay(os.Environ(), eo.env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	outBuf := &limitedBuffer{max: eo.captureMaxBytes}
	errBuf := &limitedBuffer{max: eo.captureMaxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return commandResult{}, fmt.Errorf("program %s not found", eo.program)
		}
		return commandResult{}, fmt.Errorf("program %s start failed", eo.program)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeout <-chan time.Time
	if eo.timeoutMs > 0 {
		timer := time.NewTimer(time.Duration(eo.timeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	timedOut := false
	cancelled := false
	select {
	case runErr = <-done:
	case <-timeout:
		timedOut = true
		runErr = terminate(cmd, done, eo.termGraceMs)
	case <-ctx.Done():
		cancelled = true
		runErr = terminate(cmd, done, eo.termGraceMs)
	}

	res := commandResult{
		stdout:          outBuf.String(),
		stderr:          errBuf.String(),
		stdoutTruncated: outBuf.truncated,
		timedOut:        timedOut,
	}
	if cancelled {
		return res, ctx.Err()
	}
	if timedOut {
		res.exitCode = -2
		return res, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.exitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("program %s execution failed", eo.program)
	}
	return res, nil
}

func terminate(cmd *exec.Cmd, done <-chan error, graceMs int) error {
	signalProcess(cmd, syscall.SIGTERM)
	grace := time.NewTimer(time.Duration(graceMs) * time.Millisecond)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
		signalProcess(cmd, syscall.SIGKILL)
		return <-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if pid := cmd.Process.Pid; pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	m := map[string]string{}
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		m[kv[:i]] = kv[i+1:]
	}
	for k, v := range overlay {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
