// Package fsutil is the file store used by the repair stages: plain text reads
// that degrade to empty strings, and overwriting writes that create parent
// directories. Writes are not atomic; a crash mid-write can leave a truncated
// file. Single writer per path is assumed.
package fsutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ReadText returns the file's content, or "" on any failure. Failures are
// logged, never returned: callers treat missing source the same as empty
// source and let the next execution surface the problem.
func ReadText(log *slog.Logger, path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Error("read failed", "path", path, "err", err)
		return ""
	}
	return string(b)
}

// WriteText overwrites path with text, creating missing parent directories.
// Reports success; failures are logged.
func WriteText(log *slog.Logger, path string, text string) bool {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("mkdir failed", "dir", dir, "err", err)
			return false
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		log.Error("write failed", "path", path, "err", err)
		return false
	}
	log.Debug("wrote file", "path", path, "bytes", len(text))
	return true
}
