package repair

import (
	"context"
	"fmt"
)

// Oracle is the single external text-generation capability the stages use.
type Oracle interface {
	Invoke(ctx context.Context, instructions, message string) (string, error)
}

func diagnoseInstructions(language string) string {
	return fmt.Sprintf(`You are a senior %[1]s engineer specializing in bug analysis and root-cause isolation.
Read the %[1]s source and the runtime error log below and produce a structured analysis:

1. **Error kind**: the failure category (e.g. a Go panic, a Java exception, a Python ZeroDivisionError)
2. **Root cause**: one sentence explaining why the error occurs
3. **Location**: file name and line number, when the traceback or stack reveals them
4. **Fix direction**: describe the repair in prose; do not write code
`, language)
}

// diagnose asks the oracle for a root-cause analysis. Exactly one call, no
// state mutation here; an oracle failure propagates and aborts the session.
func (e *Engine) diagnose(ctx context.Context) (string, error) {
	s := e.state
	e.log.Info("diagnosing failure", "round", s.RetryCount+1, "language", s.Language.Label)

	message := fmt.Sprintf("Buggy %s source:\n```%s\n%s\n```\n\nRuntime error log:\n```\n%s\n```\n\nProduce the root-cause analysis in the requested structure.",
		s.Language.Label, s.Language.Fence, s.SourceText, s.Stderr)

	analysis, err := e.oracle.Invoke(ctx, diagnoseInstructions(s.Language.Label), message)
	if err != nil {
		return "", fmt.Errorf("diagnosis failed: %w", err)
	}
	e.log.Debug("diagnosis complete", "chars", len(analysis))
	return analysis, nil
}
