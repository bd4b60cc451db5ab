package repair

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mendtool/mend/internal/fsutil"
)

const (
	// patchDirName is the fixed subdirectory for applied patches.
	patchDirName = "after_debug"
	// patchSuffix is appended to the original file's stem.
	patchSuffix = "_fix"
)

// PatchPath derives the isolated destination for a candidate patch:
// <workspaceRoot>/after_debug/<stem>_fix<ext>. Deterministic, so repeated
// rounds of one session overwrite the same file; concurrent sessions against
// one target are unsupported.
func PatchPath(workspaceRoot, originalFile string) string {
	base := filepath.Base(originalFile)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(workspaceRoot, patchDirName, stem+patchSuffix+ext)
}

// ApplyPatch writes the candidate to the isolated path. The original file is
// never opened for writing. Empty candidate or unset original is a no-op
// reported as failure, not an error.
func ApplyPatch(log *slog.Logger, candidate, originalFile, workspaceRoot string) (string, bool) {
	if strings.TrimSpace(candidate) == "" {
		log.Error("empty patch, skipping write")
		return "", false
	}
	if strings.TrimSpace(originalFile) == "" {
		log.Error("original file unset, cannot derive patch path")
		return "", false
	}

	dest := PatchPath(workspaceRoot, originalFile)
	if !fsutil.WriteText(log, dest, candidate) {
		return "", false
	}
	log.Info("patch applied", "path", dest, "original_untouched", originalFile)
	return dest, true
}
