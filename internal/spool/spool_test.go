package spool

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_CreateAndCleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewRegistry(dir, "spool-*.tmp")

	f1, err := r.Create()
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f2, err := r.Create()
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if _, err := f1.WriteString("one"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if _, err := f2.WriteString("two"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if n := dirEntries(t, dir); n != 2 {
		t.Errorf("found %d files on disk, want 2", n)
	}

	if err := r.Cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("found %d files on disk after cleanup, want 0", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after cleanup, want 0", r.Len())
	}
}

func TestRegistry_CleanupIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry(t.TempDir(), "spool-*.tmp")
	if _, err := r.Create(); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if err := r.Cleanup(); err != nil {
		t.Fatalf("first cleanup failed: %v", err)
	}
	if err := r.Cleanup(); err != nil {
		t.Fatalf("second cleanup failed: %v", err)
	}
}

func TestRegistry_CleanupTolerates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewRegistry(dir, "spool-*.tmp")

	// a handle the caller closed early and a file removed behind our back
	closed, err := r.Create()
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if err := closed.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	removed, err := r.Create()
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if err := os.Remove(removed.Name()); err != nil {
		t.Fatalf("failed to remove: %v", err)
	}

	if err := r.Cleanup(); err != nil {
		t.Errorf("cleanup reported an error: %v", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("found %d files on disk after cleanup, want 0", n)
	}
}

func TestRegistry_Pattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewRegistry(dir, "spool-*.tmp")
	defer r.Cleanup()

	f, err := r.Create()
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	name := filepath.Base(f.Name())
	if matched, _ := filepath.Match("spool-*.tmp", name); !matched {
		t.Errorf("temp file name %q does not match pattern", name)
	}
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	return len(entries)
}
