package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// CopyTree replaces dst with a copy of the regular files under src.
func CopyTree(src, dst string) error {
	_ = os.RemoveAll(dst)
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(out, b, 0o644)
	})
}

// Project copies the fixture directory into a fresh temp dir and returns it.
func Project(t *testing.T, fixture string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), filepath.Base(fixture))
	if err := CopyTree(fixture, dst); err != nil {
		t.Fatalf("copy fixture %s: %v", fixture, err)
	}
	return dst
}
