package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/flarebyte/taskrun/internal/testutil"
)

type runResult struct {
	code   int
	stdout []byte
	stderr []byte
}

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
	buildOut  []byte
)

func buildTaskrun(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "taskrun-e2e-")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "taskrun")
		if runtime.GOOS == "windows" {
			binPath += ".exe"
		}
		cmd := exec.Command("go", "build", "-o", binPath, "./cmd/taskrun")
		cmd.Dir = filepath.Join("..", "..")
		cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
		buildOut, buildErr = cmd.CombinedOutput()
	})
	if buildErr != nil {
		t.Fatalf("build failed: %v\n%s", buildErr, buildOut)
	}
	return binPath
}

func runCmd(t *testing.T, bin string, args ...string) runResult {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), "TASKRUN_LOG__LEVEL=error")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
		} else {
			code = -1
		}
	}
	return runResult{code: code, stdout: stdout.Bytes(), stderr: stderr.Bytes()}
}

func project(t *testing.T) string {
	t.Helper()
	return testutil.Project(t, filepath.Join("testdata", "basic"))
}

func TestRun_BuildWritesOutputs(t *testing.T) {
	bin := buildTaskrun(t)
	dir := project(t)
	res := runCmd(t, bin, "run", "build", "-C", dir)
	if res.code != 0 {
		t.Fatalf("exit %d\nstdout:\n%s\nstderr:\n%s", res.code, res.stdout, res.stderr)
	}
	b, err := os.ReadFile(filepath.Join(dir, "dist", "nested", "b.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != "TODO: WRITE MORE\n" {
		t.Fatalf("output: %q", b)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "c.md")); !os.IsNotExist(err) {
		t.Fatalf("c.md must not be copied: %v", err)
	}
}

func TestRun_ReportedFailureExitsOne(t *testing.T) {
	bin := buildTaskrun(t)
	res := runCmd(t, bin, "run", "lint", "-C", project(t))
	if res.code != 1 {
		t.Fatalf("exit %d, want 1\nstderr:\n%s", res.code, res.stderr)
	}
	if !strings.Contains(string(res.stdout), "no-todo: TODO marker") {
		t.Fatalf("stdout:\n%s", res.stdout)
	}
	if strings.TrimSpace(string(res.stderr)) != "task lint failed" {
		t.Fatalf("stderr: %q", res.stderr)
	}
}

func TestRun_LuaSandboxTimeout(t *testing.T) {
	bin := buildTaskrun(t)
	res := runCmd(t, bin, "run", "spin", "-C", project(t))
	if res.code != 1 {
		t.Fatalf("exit %d, want 1", res.code)
	}
	if !strings.Contains(string(res.stdout), "sandbox timeout") {
		t.Fatalf("stdout:\n%s", res.stdout)
	}
}

func TestRun_NestedTaskAndExec(t *testing.T) {
	bin := buildTaskrun(t)
	res := runCmd(t, bin, "run", "all", "-C", project(t))
	if res.code != 0 {
		t.Fatalf("exit %d\nstderr:\n%s", res.code, res.stderr)
	}
	if !strings.Contains(string(res.stdout), "exec: 2") {
		t.Fatalf("stdout:\n%s", res.stdout)
	}
}

func TestRun_Deterministic(t *testing.T) {
	bin := buildTaskrun(t)
	dir := project(t)
	var runs []runResult
	for i := 0; i < 3; i++ {
		runs = append(runs, runCmd(t, bin, "run", "lint", "-C", dir))
	}
	for i, r := range runs[1:] {
		if r.code != runs[0].code {
			t.Fatalf("exit code drift at run %d: %d vs %d", i+1, r.code, runs[0].code)
		}
		if !bytes.Equal(r.stdout, runs[0].stdout) {
			t.Fatalf("stdout drift at run %d", i+1)
		}
	}
}

func TestList_Tasks(t *testing.T) {
	bin := buildTaskrun(t)
	res := runCmd(t, bin, "list", "-C", project(t))
	if res.code != 0 {
		t.Fatalf("exit %d\nstderr:\n%s", res.code, res.stderr)
	}
	lines := strings.Split(strings.TrimSpace(string(res.stdout)), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "all") {
		t.Fatalf("stdout:\n%s", res.stdout)
	}
}

func TestRun_UnknownTask(t *testing.T) {
	bin := buildTaskrun(t)
	res := runCmd(t, bin, "run", "deploy", "-C", project(t))
	if res.code != 1 || strings.TrimSpace(string(res.stderr)) != "unknown task: deploy" {
		t.Fatalf("exit %d stderr %q", res.code, res.stderr)
	}
}
