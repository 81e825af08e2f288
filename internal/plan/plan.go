// Package plan defines the immutable value types for an ordered execution
// plan and its validation rules.
//
// A Plan is the output of one synthesis attempt. Its instructions are
// ordered by ascending step number, contiguous from 1. A plan with zero
// instructions is a valid, meaningful no-op signal and is distinct from a
// synthesis failure.
package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"maestro/internal/errors"
)

// -----------------------------------------------------------------------------
// Synthesis Goal
// -----------------------------------------------------------------------------

// Goal describes the desired balance of concerns for a plan.
type Goal string

const (
	// GoalBalance weighs all three dimensions equally.
	GoalBalance Goal = "Balance"

	// GoalSecurityFocus prioritizes security fixes over other concerns.
	GoalSecurityFocus Goal = "Security-Focus"

	// GoalPerformanceFocus prioritizes performance improvements.
	GoalPerformanceFocus Goal = "Performance-Focus"
)

// String returns the string representation of the goal.
func (g Goal) String() string {
	return string(g)
}

// IsValid returns true if this is a recognized goal value.
func (g Goal) IsValid() bool {
	switch g {
	case GoalBalance, GoalSecurityFocus, GoalPerformanceFocus:
		return true
	default:
		return false
	}
}

// Goals returns all recognized synthesis goals in a stable order.
func Goals() []Goal {
	return []Goal{GoalBalance, GoalSecurityFocus, GoalPerformanceFocus}
}

// ParseGoal normalizes a configuration string into a Goal.
func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balance", "":
		return GoalBalance, nil
	case "security-focus", "security_focus", "security":
		return GoalSecurityFocus, nil
	case "performance-focus", "performance_focus", "performance":
		return GoalPerformanceFocus, nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown synthesis goal %q", s)).
			WithField("synthesis.goal").WithValue(s)
	}
}

// -----------------------------------------------------------------------------
// Action Kind
// -----------------------------------------------------------------------------

// ActionKind identifies the kind of change an instruction performs.
type ActionKind string

const (
	// ActionReplace replaces the target region with new content.
	ActionReplace ActionKind = "REPLACE"

	// ActionAdd inserts new content at the target region.
	ActionAdd ActionKind = "ADD"

	// ActionDelete removes the target region. NewContent is empty.
	ActionDelete ActionKind = "DELETE"

	// ActionRefactorAndModify performs a structural refactor of the target
	// region guided by the instruction description.
	ActionRefactorAndModify ActionKind = "REFACTOR_AND_MODIFY"
)

// String returns the string representation of the action kind.
func (a ActionKind) String() string {
	return string(a)
}

// IsValid returns true if this is a recognized action kind.
func (a ActionKind) IsValid() bool {
	switch a {
	case ActionReplace, ActionAdd, ActionDelete, ActionRefactorAndModify:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Instruction
// -----------------------------------------------------------------------------

// Instruction represents one unit of change within a plan.
//
// SourceSuggestionIDs records provenance, not ownership: every ID must have
// existed in the suggestion set passed to the synthesis call that produced
// the plan.
type Instruction struct {
	// Step is the plan-local execution order, starting at 1.
	Step int `json:"step"`

	// Description is a natural-language statement of the work.
	Description string `json:"description"`

	// Action identifies the kind of change.
	Action ActionKind `json:"action"`

	// TargetRegion locates where in the artifact the change applies. Same
	// opaque locator form as Suggestion.TargetRegion; compared only for
	// exact equality.
	TargetRegion string `json:"target_region"`

	// NewContent carries the content for content-bearing actions.
	// Empty for DELETE.
	NewContent string `json:"new_content,omitempty"`

	// SourceSuggestionIDs references the suggestions that justify this
	// step. Must be non-empty.
	SourceSuggestionIDs []string `json:"source_suggestion_ids"`

	// Rationale explains why this step is part of the plan.
	Rationale string `json:"rationale"`
}

// -----------------------------------------------------------------------------
// Plan
// -----------------------------------------------------------------------------

// Plan represents the ordered, conflict-resolved output of one synthesis
// attempt.
type Plan struct {
	// ID uniquely identifies this plan. Rule-based synthesis derives it
	// deterministically from its inputs so identical inputs produce
	// identical plans.
	ID string `json:"plan_id"`

	// Goal is the synthesis goal the plan was produced under.
	Goal Goal `json:"synthesis_goal"`

	// Instructions are ordered by ascending step, contiguous from 1.
	Instructions []Instruction `json:"instructions"`
}

// IsNoOp returns true if the plan contains no instructions. A no-op plan
// is valid: it means no changes are warranted.
func (p *Plan) IsNoOp() bool {
	return len(p.Instructions) == 0
}

// StepCount returns the number of instructions in the plan.
func (p *Plan) StepCount() int {
	return len(p.Instructions)
}

// Validate checks the plan's structural invariants: a non-empty ID, a
// recognized goal, contiguous step numbers starting at 1, recognized action
// kinds, non-empty target regions, and non-empty provenance. When
// knownSuggestions is non-nil, every source suggestion ID must resolve
// against it.
//
// Failures are reported with the invalid-plan sentinel so the reasoning
// synthesizer can map them to a synthesis failure.
func (p *Plan) Validate(knownSuggestions map[string]bool) error {
	if p.ID == "" {
		return invalid("plan id cannot be empty", "plan_id", "")
	}
	if !p.Goal.IsValid() {
		return invalid(fmt.Sprintf("unknown synthesis goal %q", p.Goal), "synthesis_goal", string(p.Goal))
	}

	for i := range p.Instructions {
		ins := &p.Instructions[i]
		if ins.Step != i+1 {
			return invalid(fmt.Sprintf("instruction %d has step %d, want contiguous steps from 1", i, ins.Step), "step", "")
		}
		if !ins.Action.IsValid() {
			return invalid(fmt.Sprintf("step %d has unknown action %q", ins.Step, ins.Action), "action", string(ins.Action))
		}
		if ins.TargetRegion == "" {
			return invalid(fmt.Sprintf("step %d has empty target region", ins.Step), "target_region", "")
		}
		if len(ins.SourceSuggestionIDs) == 0 {
			return invalid(fmt.Sprintf("step %d has no source suggestion ids", ins.Step), "source_suggestion_ids", "")
		}
		if knownSuggestions != nil {
			for _, id := range ins.SourceSuggestionIDs {
				if !knownSuggestions[id] {
					return invalid(fmt.Sprintf("step %d references unknown suggestion %q", ins.Step, id), "source_suggestion_ids", id)
				}
			}
		}
	}

	return nil
}

func invalid(msg, field, value string) error {
	verr := errors.NewValidationError(msg).WithField(field).WithCause(errors.ErrPlanInvalid)
	if value != "" {
		verr = verr.WithValue(value)
	}
	return verr
}

// Summary returns a short human-readable description of the plan, used in
// logs and run reports.
func (p *Plan) Summary() string {
	if p.IsNoOp() {
		return fmt.Sprintf("%s: no-op plan (%s)", p.ID, p.Goal)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d step(s) (%s)", p.ID, len(p.Instructions), p.Goal)
	for i := range p.Instructions {
		ins := &p.Instructions[i]
		fmt.Fprintf(&b, "\n  %d. [%s] %s <- %s", ins.Step, ins.Action, ins.TargetRegion,
			strings.Join(ins.SourceSuggestionIDs, ","))
	}
	return b.String()
}

// DeriveID computes a deterministic plan ID from the synthesis inputs.
// It hashes the goal and the ordered suggestion IDs so the rule-based
// synthesizer produces identical plans for identical inputs.
func DeriveID(goal Goal, suggestionIDs []string) string {
	h := sha256.New()
	h.Write([]byte(goal))
	for _, id := range suggestionIDs {
		h.Write([]byte{0})
		h.Write([]byte(id))
	}
	return "plan-" + hex.EncodeToString(h.Sum(nil))[:12]
}
