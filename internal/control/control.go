// Package control drives one artifact through the improvement pipeline:
// collect suggestions, synthesize a plan, execute it, score the candidate,
// and decide on the single bounded retry.
//
// All collaborators are injected at construction. The loop holds no global
// state, so independent artifacts can run through separate loops (or the
// same loop) concurrently.
package control

import (
	"maestro/internal/analyzer"
	"maestro/internal/artifact"
	"maestro/internal/plan"
	"maestro/internal/score"
)

// -----------------------------------------------------------------------------
// States
// -----------------------------------------------------------------------------

// State identifies where in the pipeline a run currently is.
type State string

const (
	StateInit          State = "INIT"
	StateCollect       State = "COLLECT"
	StateSynthesize    State = "SYNTHESIZE"
	StateExecute       State = "EXECUTE"
	StateScore         State = "SCORE"
	StateRetryDecision State = "RETRY_DECISION"
	StateDone          State = "DONE"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// -----------------------------------------------------------------------------
// Terminal Status
// -----------------------------------------------------------------------------

// TerminalStatus is the mutually exclusive outcome tag of one run.
type TerminalStatus string

const (
	// TerminalNoOp means no analyzer had anything to suggest; the
	// artifact is accepted unchanged. A third outcome class, neither
	// success nor failure.
	TerminalNoOp TerminalStatus = "NO_OP"

	// TerminalSuccess means the first attempt's candidate passed scoring.
	TerminalSuccess TerminalStatus = "SUCCESS"

	// TerminalSuccessAfterRetry means the retry attempt's candidate
	// passed scoring.
	TerminalSuccessAfterRetry TerminalStatus = "SUCCESS_AFTER_RETRY"

	// TerminalFinalFailure means scoring failed and no retry remained.
	TerminalFinalFailure TerminalStatus = "FINAL_FAILURE"

	// TerminalSynthFailure means synthesis failed; the attempt ended
	// without consuming the retry budget.
	TerminalSynthFailure TerminalStatus = "SYNTH_FAILURE"

	// TerminalExecFailure means the executor produced no candidate; the
	// attempt ended without consuming the retry budget.
	TerminalExecFailure TerminalStatus = "EXEC_FAILURE"
)

// String returns the string representation of the status.
func (t TerminalStatus) String() string {
	return string(t)
}

// IsValid returns true if this is a recognized terminal status.
func (t TerminalStatus) IsValid() bool {
	switch t {
	case TerminalNoOp, TerminalSuccess, TerminalSuccessAfterRetry,
		TerminalFinalFailure, TerminalSynthFailure, TerminalExecFailure:
		return true
	default:
		return false
	}
}

// Succeeded returns true for the two passing outcomes. NO_OP is neither a
// success nor a failure.
func (t TerminalStatus) Succeeded() bool {
	return t == TerminalSuccess || t == TerminalSuccessAfterRetry
}

// Failed returns true for the three failing outcomes.
func (t TerminalStatus) Failed() bool {
	switch t {
	case TerminalFinalFailure, TerminalSynthFailure, TerminalExecFailure:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Run State and Result
// -----------------------------------------------------------------------------

// RunState is the loop's working memory for one artifact. It is owned
// exclusively by the loop and discarded once a terminal status is reached.
type RunState struct {
	// Attempt is 0 on the first pass and 1 on the retry. Hard cap.
	Attempt int

	// Feedback is non-empty only on the retry attempt.
	Feedback string

	// State is the current pipeline stage, for logging.
	State State
}

// Result is what the loop exposes to its caller after a terminal state:
// the final artifact (the original for NO_OP and failures), every
// QualityReport produced along the way, and the terminal tag.
type Result struct {
	TerminalStatus TerminalStatus `json:"terminal_status"`

	// Final is the artifact the run ends with: the passing candidate on
	// success, the original otherwise.
	Final artifact.Artifact `json:"final"`

	// Reports holds one QualityReport per attempt that reached scoring.
	Reports []score.QualityReport `json:"reports,omitempty"`

	// Outcomes records what each analyzer contributed during collection.
	Outcomes []analyzer.DimensionOutcome `json:"outcomes,omitempty"`

	// Plans holds the plan of each attempt that produced one.
	Plans []*plan.Plan `json:"plans,omitempty"`

	// Rationale summarizes the deciding factor in human-readable form.
	Rationale string `json:"rationale"`

	// Attempts is the number of synthesis attempts made.
	Attempts int `json:"attempts"`
}
