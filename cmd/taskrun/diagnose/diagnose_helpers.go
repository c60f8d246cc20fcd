package diagnose

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/taskrun/cmd/taskrun/run"
	"github.com/flarebyte/taskrun/internal/console"
	"github.com/flarebyte/taskrun/internal/plugin"
	"github.com/flarebyte/taskrun/internal/snapshot"
)

func runSteps(ctx context.Context, stdout, stderr io.Writer, steps []run.Step, files []string) error {
	rep := plugin.NewReporter()
	console.NewPrinter(stderr, true).Attach(rep)

	in := plugin.Props{Reporter: rep}
	for _, p := range files {
		in.Files = append(in.Files, plugin.File{Path: p})
	}
	out, err := runStepSequence(ctx, in, steps)
	if err != nil {
		return err
	}
	return render(stdout, out)
}

func runStepSequence(ctx context.Context, in plugin.Props, steps []run.Step) (plugin.Props, error) {
	out := in
	for i, s := range steps {
		seq := i + 1
		if err := dumpStepBoundary(seq, s.Label, "in", out); err != nil {
			return plugin.Props{}, err
		}
		next, err := s.Runner(ctx, out)
		if err != nil {
			if plugin.IsSilent(err) {
				return plugin.Props{}, fmt.Errorf("step %s aborted", s.Label)
			}
			return plugin.Props{}, fmt.Errorf("step %s failed", s.Label)
		}
		if err := dumpStepBoundary(seq, s.Label, "out", next); err != nil {
			return plugin.Props{}, err
		}
		out = next
	}
	return out, nil
}

func dumpStepBoundary(seq int, label, suffix string, p plugin.Props) error {
	if flagDumpDir == "" {
		return nil
	}
	base := fmt.Sprintf("%03d_%s_%s.json", seq, fileSafe(label), suffix)
	b, err := snapshot.JSON(snapshot.Of(p))
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(flagDumpDir, base), b)
}

func render(stdout io.Writer, p plugin.Props) error {
	snap := snapshot.Of(p)
	var (
		b   []byte
		err error
	)
	if flagFormat == "yaml" {
		b, err = snapshot.YAML(snap)
	} else {
		b, err = snapshot.JSON(snap)
	}
	if err != nil {
		return err
	}
	if flagOut == "" || flagOut == "-" {
		_, err = stdout.Write(b)
		return err
	}
	return writeFile(flagOut, b)
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// fileSafe maps a step label onto a file name fragment.
func fileSafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, label)
}
