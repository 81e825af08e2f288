package synth

import (
	"context"
	"fmt"
	"sort"

	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

// RuleBased resolves suggestion conflicts with a fixed, deterministic rule
// set and no external calls. Identical inputs always produce an identical
// plan, so it never consumes retry feedback.
//
// The algorithm runs in three ordered phases:
//
//  1. Priority class: every Critical security suggestion becomes its own
//     Replace instruction, ordered by ID, occupying the earliest steps.
//  2. Per-region winner selection: the remaining suggestions are grouped by
//     exact target-region equality; within each group only the highest
//     severity survives, ties broken by ID ascending. Losers are discarded
//     silently.
//  3. Global ordering: winners are appended ordered by severity descending,
//     then ID ascending, continuing the step numbering.
//
// An empty suggestion set yields an empty plan, which is a valid no-op.
type RuleBased struct{}

// NewRuleBased creates the rule-based synthesizer.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Mode identifies the strategy.
func (r *RuleBased) Mode() Mode {
	return ModeRuleBased
}

// Synthesize produces a plan from the suggestion set. The only possible
// error is a precondition violation in the input set itself; well-formed
// input cannot fail.
func (r *RuleBased) Synthesize(_ context.Context, req Request) (*plan.Plan, error) {
	if err := suggestion.ValidateSet(req.Suggestions); err != nil {
		return nil, err
	}
	goal := req.Goal
	if goal == "" {
		goal = plan.GoalBalance
	}

	var priority, rest []suggestion.Suggestion
	for _, s := range req.Suggestions {
		if s.IsPriority() {
			priority = append(priority, s)
		} else {
			rest = append(rest, s)
		}
	}

	sort.Slice(priority, func(i, j int) bool {
		return priority[i].ID < priority[j].ID
	})

	// Phase 2 depends on the priority class already being removed.
	winners := selectRegionWinners(rest)
	winners = suggestion.SortStable(winners)

	instructions := make([]plan.Instruction, 0, len(priority)+len(winners))
	for _, s := range priority {
		instructions = append(instructions, instructionFrom(s, len(instructions)+1))
	}
	for _, s := range winners {
		instructions = append(instructions, instructionFrom(s, len(instructions)+1))
	}

	ids := make([]string, 0, len(req.Suggestions))
	for _, s := range req.Suggestions {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)

	return &plan.Plan{
		ID:           plan.DeriveID(goal, ids),
		Goal:         goal,
		Instructions: instructions,
	}, nil
}

// selectRegionWinners keeps exactly one suggestion per distinct target
// region: the highest severity, ties broken by ID ascending. Single-member
// groups keep their sole member.
func selectRegionWinners(suggestions []suggestion.Suggestion) []suggestion.Suggestion {
	byRegion := make(map[string]suggestion.Suggestion)
	for _, s := range suggestions {
		cur, ok := byRegion[s.TargetRegion]
		if !ok || beats(s, cur) {
			byRegion[s.TargetRegion] = s
		}
	}

	winners := make([]suggestion.Suggestion, 0, len(byRegion))
	for _, s := range byRegion {
		winners = append(winners, s)
	}
	return winners
}

// beats reports whether a wins over b under the per-region total order.
func beats(a, b suggestion.Suggestion) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	return a.ID < b.ID
}

func instructionFrom(s suggestion.Suggestion, step int) plan.Instruction {
	return plan.Instruction{
		Step:                step,
		Description:         fmt.Sprintf("apply %s suggestion %s: %s", s.Source, s.ID, s.Title),
		Action:              plan.ActionReplace,
		TargetRegion:        s.TargetRegion,
		NewContent:          s.ProposedChange,
		SourceSuggestionIDs: []string{s.ID},
		Rationale:           s.Rationale,
	}
}
