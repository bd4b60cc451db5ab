package repair

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

type FinalStatus string

const (
	// FinalSuccess: a validation execution (or the initial run) exited 0.
	FinalSuccess FinalStatus = "success"
	// FinalFail: the retry budget was exhausted without a passing run.
	FinalFail FinalStatus = "fail"
	// FinalAborted: an oracle or startup failure ended the session early.
	// Reported distinctly from ordinary exhaustion so callers can react.
	FinalAborted FinalStatus = "aborted"
)

// FinalOutcome is the terminal artifact of a session, persisted as final.json
// under the session logs directory.
type FinalOutcome struct {
	Timestamp time.Time   `json:"timestamp"`
	Status    FinalStatus `json:"status"`

	SessionID string `json:"session_id"`

	OriginalFile string `json:"original_file"`
	PatchedFile  string `json:"patched_file,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetry   int `json:"max_retry"`

	// FailureClass holds the oracle error classification for aborted
	// sessions, empty otherwise.
	FailureClass  string `json:"failure_class,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	FinalStderr   string `json:"final_stderr,omitempty"`

	// Hashes of the original file at session start and end. Equal values
	// are the integrity evidence that no stage wrote the original.
	OriginalHashBefore string `json:"original_hash_before,omitempty"`
	OriginalHashAfter  string `json:"original_hash_after,omitempty"`
}

func (fo *FinalOutcome) Save(path string) error {
	if fo == nil {
		return fmt.Errorf("final outcome is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(fo, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// HashFile returns the hex blake3 sum of a file, or "" when unreadable.
func HashFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(b)
	return fmt.Sprintf("%x", sum[:])
}
