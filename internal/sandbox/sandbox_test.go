package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mendtool/mend/internal/logging"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh not available")
	}
}

func TestRunSuccess(t *testing.T) {
	requireSh(t)
	path := writeScript(t, "ok.sh", "echo hello\n")

	res := Run(context.Background(), logging.Discard(), path, 5*time.Second, "sh")
	if !res.Succeeded {
		t.Fatalf("Succeeded=false, stderr=%q", res.Stderr)
	}
	if res.Stdout != "hello" {
		t.Fatalf("stdout = %q, want trimmed %q", res.Stdout, "hello")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	requireSh(t)
	path := writeScript(t, "fail.sh", "echo boom >&2\nexit 3\n")

	res := Run(context.Background(), logging.Discard(), path, 5*time.Second, "sh")
	if res.Succeeded {
		t.Fatalf("Succeeded=true for exit 3")
	}
	if res.Stderr != "boom" {
		t.Fatalf("stderr = %q, want %q", res.Stderr, "boom")
	}
}

func TestRunMissingFile(t *testing.T) {
	res := Run(context.Background(), logging.Discard(), filepath.Join(t.TempDir(), "gone.py"), time.Second, "sh")
	if res.Succeeded {
		t.Fatalf("Succeeded=true for missing file")
	}
	if !strings.Contains(res.Stderr, "target file not found") {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestRunTimeoutKillsChild(t *testing.T) {
	requireSh(t)
	path := writeScript(t, "sleep.sh", "sleep 30\n")

	start := time.Now()
	res := Run(context.Background(), logging.Discard(), path, 500*time.Millisecond, "sh")
	elapsed := time.Since(start)

	if res.Succeeded {
		t.Fatalf("Succeeded=true for timed-out run")
	}
	if !strings.Contains(res.Stderr, "timed out") {
		t.Fatalf("stderr = %q, want timeout message", res.Stderr)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("run blocked %s, child not killed on deadline", elapsed)
	}
}

func TestRunBadInterpreter(t *testing.T) {
	requireSh(t)
	path := writeScript(t, "ok.sh", "echo hi\n")

	res := Run(context.Background(), logging.Discard(), path, time.Second, "definitely-not-a-real-binary")
	if res.Succeeded {
		t.Fatalf("Succeeded=true for missing interpreter")
	}
	if !strings.Contains(res.Stderr, "execution error") {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestRunWorkingDirIsFileDir(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("42"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "read.sh")
	if err := os.WriteFile(path, []byte("cat data.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := Run(context.Background(), logging.Discard(), path, 5*time.Second, "sh")
	if !res.Succeeded || res.Stdout != "42" {
		t.Fatalf("relative read failed: %+v", res)
	}
}
