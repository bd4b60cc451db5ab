package repair

import (
	"context"
	"fmt"
)

func synthesizeInstructions(language, fence string) string {
	return fmt.Sprintf(`You are a senior %[1]s engineer.
Repair the bug using the provided error log and root-cause analysis.

Output rules (strict):
- Output only the complete fixed %[1]s source; omit nothing
- Put the source inside a %[2]s%[3]s ... %[2]s block
- No prose outside the block
`, language, "```", fence)
}

// synthesize asks the oracle for a full replacement source and extracts it
// from the response. Exactly one call. Extraction is best-effort and never
// fails; only the oracle call itself can abort the session.
func (e *Engine) synthesize(ctx context.Context) (string, error) {
	s := e.state
	e.log.Info("synthesizing patch", "round", s.RetryCount+1)

	message := fmt.Sprintf("Buggy %s source:\n```%s\n%s\n```\n\nError log:\n```\n%s\n```\n\nRoot-cause analysis:\n%s\n\nOutput the complete fixed %s source inside a ```%s block.",
		s.Language.Label, s.Language.Fence, s.SourceText, s.Stderr, s.Diagnosis, s.Language.Label, s.Language.Fence)

	raw, err := e.oracle.Invoke(ctx, synthesizeInstructions(s.Language.Label, s.Language.Fence), message)
	if err != nil {
		return "", fmt.Errorf("patch synthesis failed: %w", err)
	}

	patch := ExtractCode(e.log, raw, s.Language.Fence)
	e.log.Info("patch synthesized", "chars", len(patch))
	return patch, nil
}
