package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindEntryFileExactMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "aaa.py", "")
	want := writeFile(t, dir, "main.py", "print('hi')")

	got, err := FindEntryFile(dir, "main.py")
	if err != nil {
		t.Fatalf("FindEntryFile: %v", err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFindEntryFileFallsBackToFirstByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.py", "")
	want := writeFile(t, dir, "alpha.py", "")
	writeFile(t, dir, "notes.txt", "")

	got, err := FindEntryFile(dir, "main.py")
	if err != nil {
		t.Fatalf("FindEntryFile: %v", err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFindEntryFileMissingWorkspace(t *testing.T) {
	_, err := FindEntryFile(filepath.Join(t.TempDir(), "gone"), "main.py")
	if err == nil || !strings.Contains(err.Error(), "workspace directory not found") {
		t.Fatalf("err = %v, want workspace-not-found", err)
	}
}

func TestFindEntryFileEmptyWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "")

	if _, err := FindEntryFile(dir, "main.py"); err == nil {
		t.Fatalf("expected error for workspace without .py files")
	}
}
