// Package sandbox runs a source file as an isolated child process and captures
// its output. Every failure mode is surfaced as a Result, never an error: a
// non-zero exit, a missing file, a spawn failure and a timeout all mean
// Succeeded=false with a diagnostic in Stderr. Retry logic lives above this
// layer.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type Result struct {
	// Succeeded is true iff the process exited with code 0.
	Succeeded bool
	Stdout    string
	Stderr    string
}

// Run executes `interpreter <filePath>` with the file's directory as working
// directory so relative references inside the target resolve. The child is
// forcibly killed when timeout elapses; control never returns with the
// process still running.
func Run(ctx context.Context, log *slog.Logger, filePath string, timeout time.Duration, interpreter string) Result {
	if fi, err := os.Stat(filePath); err != nil || !fi.Mode().IsRegular() {
		msg := fmt.Sprintf("target file not found: %s", filePath)
		log.Error("execution skipped", "reason", msg)
		return Result{Succeeded: false, Stderr: msg}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, interpreter, filePath)
	cmd.Dir = filepath.Dir(filePath)
	// No way to feed stdin to the target; avoid hanging on interactive reads.
	cmd.Stdin = strings.NewReader("")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Info("executing", "interpreter", interpreter, "file", filepath.Base(filePath), "timeout", timeout)
	start := time.Now()
	runErr := cmd.Run()
	dur := time.Since(start)

	if cctx.Err() == context.DeadlineExceeded {
		msg := fmt.Sprintf("execution timed out after %s", timeout)
		log.Error("execution timeout", "file", filePath, "timeout", timeout)
		return Result{Succeeded: false, Stdout: strings.TrimSpace(stdout.String()), Stderr: msg}
	}

	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			// Spawn/IO error rather than a target failure.
			msg := fmt.Sprintf("execution error: %v", runErr)
			log.Error("spawn failed", "interpreter", interpreter, "err", runErr)
			if errOut != "" {
				msg = errOut + "\n" + msg
			}
			return Result{Succeeded: false, Stdout: out, Stderr: msg}
		}
		log.Warn("execution failed", "exit_code", cmd.ProcessState.ExitCode(), "duration", dur)
		return Result{Succeeded: false, Stdout: out, Stderr: errOut}
	}

	log.Info("execution succeeded", "duration", dur)
	return Result{Succeeded: true, Stdout: out, Stderr: errOut}
}
