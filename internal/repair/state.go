package repair

import "github.com/mendtool/mend/internal/lang"

// Phase tells Solve how it was reached. A session moves from Testing to
// Debugging at most once and never back.
type Phase int

const (
	// PhaseTesting covers the initial execution of the untouched target.
	PhaseTesting Phase = iota
	// PhaseDebugging covers every diagnose/patch/validate cycle after the
	// first failure.
	PhaseDebugging
)

func (p Phase) String() string {
	switch p {
	case PhaseTesting:
		return "testing"
	case PhaseDebugging:
		return "debugging"
	default:
		return "unknown"
	}
}

// State is the single mutable record threaded through one session.
type State struct {
	WorkspaceRoot string
	// OriginalFile is never opened for writing by any stage.
	OriginalFile string
	// PatchedFile is empty until a candidate patch has been applied.
	PatchedFile string
	// SourceText is the content of whatever file ran last.
	SourceText string
	Language   lang.Language

	Stdout string
	Stderr string

	Diagnosis string
	Patch     string

	// RetryCount increments by exactly one per Debugging-phase validation
	// execution; the initial Testing-phase execution is never counted.
	RetryCount int
	MaxRetry   int

	Fixed bool
	Phase Phase
}

// executedFile is the target of the next Debugging-phase validation: the
// applied patch when one exists, otherwise the original.
func (s *State) executedFile() string {
	if s.PatchedFile != "" {
		return s.PatchedFile
	}
	return s.OriginalFile
}
