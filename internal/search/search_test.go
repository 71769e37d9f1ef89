package search

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalFindsMatchesAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package main\nfunc needle() {}\n")
	writeFile(t, filepath.Join(root, "sub", "b.go"), "var x = needle\n")

	matches, err := Global(root, "needle", 10)
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2: %+v", len(matches), matches)
	}
}

func TestGlobalRespectsLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hit\nhit\nhit\nhit\n")

	matches, err := Global(root, "hit", 2)
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2 (limit enforced)", len(matches))
	}
}

func TestGlobalSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "hooks", "c.txt"), "needle")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "d.txt"), "needle")
	writeFile(t, filepath.Join(root, "real.txt"), "needle")

	matches, err := Global(root, "needle", 10)
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Path != filepath.Join(root, "real.txt") {
		t.Fatalf("Global() = %+v, want exactly the one match outside ignored dirs", matches)
	}
}

func TestGlobalReportsLineAndColumn(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "first\nsecond needle here\n")

	matches, err := Global(root, "needle", 10)
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	m := matches[0]
	if m.Line != 1 || m.Column != 7 {
		t.Fatalf("match = %+v, want Line=1 Column=7", m)
	}
}

func TestGlobalEmptyPatternStillCompiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "anything\n")
	if _, err := Global(root, "", 10); err != nil {
		t.Fatalf("Global() with empty pattern error = %v", err)
	}
}
