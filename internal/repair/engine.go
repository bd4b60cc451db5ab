// Package repair runs one end-to-end repair session: execute the target,
// diagnose failures through the oracle, synthesize and apply candidate
// patches to an isolated path, and re-validate under a fixed retry budget.
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mendtool/mend/internal/fsutil"
	"github.com/mendtool/mend/internal/lang"
	"github.com/mendtool/mend/internal/llm"
	"github.com/mendtool/mend/internal/sandbox"
)

// stateID names the orchestrator's states. The transition graph:
//
//	entry -> test -> solve -> done            (already passing)
//	                 solve -> debug -> plan -> execute -> solve   (first failure)
//	                 solve -> debug                               (replan, budget left)
//	                 solve -> failed                              (budget exhausted)
//
// Every debug cycle re-diagnoses against the latest failure output before
// synthesizing the next candidate.
type stateID string

const (
	stateEntry   stateID = "entry"
	stateTest    stateID = "test"
	stateSolve   stateID = "solve"
	stateDebug   stateID = "debug"
	statePlan    stateID = "plan"
	stateExecute stateID = "execute"
	stateDone    stateID = "done"
	stateFailed  stateID = "failed"
)

type Options struct {
	WorkspaceRoot string
	TargetFile    string

	// MaxRetry bounds Debugging-phase validation executions. RetryCount
	// equal to MaxRetry terminates the session; there is never an extra
	// attempt.
	MaxRetry    int
	Timeout     time.Duration
	Interpreter string

	// SessionID is a ULID; generated when empty.
	SessionID string
	// LogsRoot defaults to <WorkspaceRoot>/logs/<SessionID>.
	LogsRoot string
}

func (o *Options) applyDefaults() error {
	if o.TargetFile == "" {
		return fmt.Errorf("target file is required")
	}
	if o.WorkspaceRoot == "" {
		o.WorkspaceRoot = filepath.Dir(o.TargetFile)
	}
	if o.MaxRetry < 0 {
		return fmt.Errorf("max retry must be >= 0")
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Interpreter == "" {
		o.Interpreter = "python3"
	}
	if o.SessionID == "" {
		o.SessionID = ulid.Make().String()
	}
	if o.LogsRoot == "" {
		o.LogsRoot = filepath.Join(o.WorkspaceRoot, "logs", o.SessionID)
	}
	return nil
}

// Engine drives one session through the state machine. Sessions are
// single-threaded; an Engine must not be shared.
type Engine struct {
	opts   Options
	oracle Oracle
	log    *slog.Logger
	state  *State

	startHash string
}

func NewEngine(opts Options, oracle Oracle, log *slog.Logger) (*Engine, error) {
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if fi, err := os.Stat(opts.TargetFile); err != nil || !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("target file not found: %s", opts.TargetFile)
	}
	return &Engine{
		opts:   opts,
		oracle: oracle,
		log:    log.With("session", opts.SessionID),
		state: &State{
			WorkspaceRoot: opts.WorkspaceRoot,
			OriginalFile:  opts.TargetFile,
			Language:      lang.FromPath(opts.TargetFile),
			MaxRetry:      opts.MaxRetry,
			Phase:         PhaseTesting,
		},
	}, nil
}

// State exposes the session record for inspection after Run returns.
func (e *Engine) State() *State { return e.state }

// Run executes the session to a terminal state. The returned FinalOutcome is
// non-nil even on error; the error is non-nil only for hard aborts (oracle or
// artifact failures), never for ordinary exhausted retries.
func (e *Engine) Run(ctx context.Context) (*FinalOutcome, error) {
	e.startHash = HashFile(e.state.OriginalFile)
	e.log.Info("session started",
		"target", e.state.OriginalFile,
		"language", e.state.Language.Label,
		"max_retry", e.state.MaxRetry)

	cur := stateEntry
	for {
		next, err := e.step(ctx, cur)
		if err != nil {
			return e.finalize(FinalAborted, err), err
		}
		switch next {
		case stateDone:
			return e.finalize(FinalSuccess, nil), nil
		case stateFailed:
			return e.finalize(FinalFail, nil), nil
		}
		cur = next
	}
}

func (e *Engine) step(ctx context.Context, cur stateID) (stateID, error) {
	switch cur {
	case stateEntry:
		return stateTest, nil
	case stateTest:
		return e.stepTest(ctx)
	case stateSolve:
		return e.stepSolve(ctx)
	case stateDebug:
		return e.stepDebug(ctx)
	case statePlan:
		return e.stepPlan(ctx)
	case stateExecute:
		return e.stepExecute()
	default:
		return "", fmt.Errorf("invalid state: %q", cur)
	}
}

// stepTest runs the untouched original and caches its source on the first
// pass. It never touches the retry counter.
func (e *Engine) stepTest(ctx context.Context) (stateID, error) {
	s := e.state
	if s.SourceText == "" {
		s.SourceText = fsutil.ReadText(e.log, s.OriginalFile)
	}

	res := sandbox.Run(ctx, e.log, s.OriginalFile, e.opts.Timeout, e.opts.Interpreter)
	s.Fixed = res.Succeeded
	s.Stdout = res.Stdout
	s.Stderr = res.Stderr
	e.writeAttemptTranscript(0, res)
	return stateSolve, nil
}

// stepSolve routes. Entered from Testing it is a pure gate over the Test
// result; entered from Debugging it performs a fresh validation execution of
// the current candidate and consumes one retry. The asymmetry is deliberate.
func (e *Engine) stepSolve(ctx context.Context) (stateID, error) {
	s := e.state

	if s.Phase == PhaseTesting {
		if s.Fixed {
			e.log.Info("target already passing")
			return stateDone, nil
		}
		e.log.Warn("initial execution failed, entering debug cycle")
		return stateDebug, nil
	}

	target := s.executedFile()
	e.log.Info("validating candidate", "retry", s.RetryCount, "file", target)
	res := sandbox.Run(ctx, e.log, target, e.opts.Timeout, e.opts.Interpreter)
	s.RetryCount++
	s.Fixed = res.Succeeded
	s.Stdout = res.Stdout
	s.Stderr = res.Stderr
	s.SourceText = fsutil.ReadText(e.log, target)
	e.writeAttemptTranscript(s.RetryCount, res)

	if res.Succeeded {
		e.log.Info("validation passed", "retry_count", s.RetryCount)
		return stateDone, nil
	}
	if s.RetryCount < s.MaxRetry {
		e.log.Warn("validation failed, replanning", "retry_count", s.RetryCount, "max_retry", s.MaxRetry)
		return stateDebug, nil
	}
	e.log.Error("retry budget exhausted", "retry_count", s.RetryCount, "max_retry", s.MaxRetry)
	return stateFailed, nil
}

// stepDebug enters the Debugging phase and fetches a diagnosis.
func (e *Engine) stepDebug(ctx context.Context) (stateID, error) {
	s := e.state
	s.Phase = PhaseDebugging

	analysis, err := e.diagnose(ctx)
	if err != nil {
		return "", err
	}
	s.Diagnosis = analysis
	return statePlan, nil
}

// stepPlan synthesizes the next candidate patch.
func (e *Engine) stepPlan(ctx context.Context) (stateID, error) {
	patch, err := e.synthesize(ctx)
	if err != nil {
		return "", err
	}
	e.state.Patch = patch
	return stateExecute, nil
}

// stepExecute applies the candidate to the isolated path. A degenerate
// candidate leaves the previous patch (or original) as the validation target.
func (e *Engine) stepExecute() (stateID, error) {
	s := e.state
	if dest, ok := ApplyPatch(e.log, s.Patch, s.OriginalFile, s.WorkspaceRoot); ok {
		s.PatchedFile = dest
		s.SourceText = s.Patch
	}
	return stateSolve, nil
}

func (e *Engine) finalize(status FinalStatus, cause error) *FinalOutcome {
	s := e.state
	fo := &FinalOutcome{
		Timestamp:          time.Now().UTC(),
		Status:             status,
		SessionID:          e.opts.SessionID,
		OriginalFile:       s.OriginalFile,
		PatchedFile:        s.PatchedFile,
		RetryCount:         s.RetryCount,
		MaxRetry:           s.MaxRetry,
		FinalStderr:        s.Stderr,
		OriginalHashBefore: e.startHash,
		OriginalHashAfter:  HashFile(s.OriginalFile),
	}
	if cause != nil {
		fo.FailureReason = cause.Error()
		fo.FailureClass = llm.ClassifyReason(cause)
	} else if status == FinalFail {
		fo.FailureReason = fmt.Sprintf("retry budget exhausted after %d attempts", s.RetryCount)
	}
	if fo.OriginalHashBefore != fo.OriginalHashAfter {
		e.log.Error("original file changed during session", "file", s.OriginalFile)
	}

	if err := fo.Save(filepath.Join(e.opts.LogsRoot, "final.json")); err != nil {
		e.log.Error("persist final outcome", "err", err)
	}
	e.log.Info("session finished", "status", status, "retry_count", s.RetryCount)
	return fo
}

// writeAttemptTranscript records one execution's output under the session
// logs dir. Attempt 0 is the initial Testing-phase run.
func (e *Engine) writeAttemptTranscript(attempt int, res sandbox.Result) {
	dir := e.opts.LogsRoot
	fsutil.WriteText(e.log, filepath.Join(dir, fmt.Sprintf("attempt_%d_stdout.log", attempt)), res.Stdout)
	fsutil.WriteText(e.log, filepath.Join(dir, fmt.Sprintf("attempt_%d_stderr.log", attempt)), res.Stderr)
}
