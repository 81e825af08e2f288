// Package synth turns a set of suggestions into an execution plan.
//
// Two strategies implement the same contract: a deterministic rule-based
// synthesizer that resolves conflicts locally with no external calls, and a
// reasoning-based synthesizer that delegates conflict resolution to an
// oracle and only validates the result. The strategy is selected by
// configuration, never by ambient state.
package synth

import (
	"context"
	"fmt"
	"strings"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/logging"
	"maestro/internal/oracle"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

// Mode selects the synthesis strategy.
type Mode string

const (
	// ModeRuleBased selects deterministic local conflict resolution.
	ModeRuleBased Mode = "rule-based"

	// ModeReasoning selects oracle-delegated conflict resolution.
	ModeReasoning Mode = "reasoning"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true if this is a recognized mode.
func (m Mode) IsValid() bool {
	return m == ModeRuleBased || m == ModeReasoning
}

// ParseMode normalizes a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rule-based", "rule_based", "rulebased", "rules":
		return ModeRuleBased, nil
	case "reasoning", "reasoning-based", "reasoning_based":
		return ModeReasoning, nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown synthesis mode %q", s)).
			WithField("synthesis.mode").WithValue(s)
	}
}

// Request carries everything one synthesis call may need. The rule-based
// strategy reads only Suggestions and Goal; the reasoning strategy also
// serializes the artifact and, on a retry, the feedback text.
type Request struct {
	Artifact    artifact.Artifact
	Suggestions []suggestion.Suggestion
	Goal        plan.Goal

	// Feedback is non-empty only on the retry attempt.
	Feedback string
}

// Synthesizer produces a plan from a suggestion set.
type Synthesizer interface {
	// Synthesize returns a validated plan. A plan with zero instructions
	// is a valid no-op result, not an error.
	Synthesize(ctx context.Context, req Request) (*plan.Plan, error)

	// Mode identifies the strategy.
	Mode() Mode
}

// New constructs the synthesizer for the configured mode. The oracle may be
// nil for rule-based mode; reasoning mode requires one.
func New(mode Mode, o oracle.Oracle, logger *logging.Logger) (Synthesizer, error) {
	switch mode {
	case ModeRuleBased:
		return NewRuleBased(), nil
	case ModeReasoning:
		if o == nil {
			return nil, errors.NewValidationError("reasoning mode requires an oracle").
				WithField("synthesis.mode")
		}
		return NewReasoning(o, logger), nil
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown synthesis mode %q", mode)).
			WithField("synthesis.mode").WithValue(string(mode))
	}
}
