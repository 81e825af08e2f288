package synth

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"maestro/internal/errors"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

func sugg(id string, src suggestion.Source, sev suggestion.Severity, region string) suggestion.Suggestion {
	return suggestion.Suggestion{
		ID:             id,
		Source:         src,
		Title:          "improve " + region,
		TargetRegion:   region,
		Severity:       sev,
		Rationale:      "found by " + src.String(),
		ProposedChange: "change for " + id,
	}
}

func synthesize(t *testing.T, suggestions []suggestion.Suggestion) *plan.Plan {
	t.Helper()
	p, err := NewRuleBased().Synthesize(context.Background(), Request{
		Suggestions: suggestions,
		Goal:        plan.GoalBalance,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	return p
}

func TestRuleBased_PriorityClassFirst(t *testing.T) {
	// Critical security suggestions occupy the earliest steps ordered by
	// ID, each with singleton provenance, regardless of what else exists.
	suggestions := []suggestion.Suggestion{
		sugg("PERF-001", suggestion.SourcePerformance, suggestion.SeverityCritical, "r3"),
		sugg("SEC-002", suggestion.SourceSecurity, suggestion.SeverityCritical, "r2"),
		sugg("SEC-001", suggestion.SourceSecurity, suggestion.SeverityCritical, "r1"),
		sugg("READ-001", suggestion.SourceReadability, suggestion.SeverityLow, "r4"),
	}

	p := synthesize(t, suggestions)

	if len(p.Instructions) != 4 {
		t.Fatalf("got %d instructions, want 4", len(p.Instructions))
	}
	wantFirst := [][]string{{"SEC-001"}, {"SEC-002"}}
	for i, want := range wantFirst {
		got := p.Instructions[i].SourceSuggestionIDs
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("step %d provenance mismatch (-want +got):\n%s", i+1, diff)
		}
		if p.Instructions[i].Action != plan.ActionReplace {
			t.Errorf("priority step %d action = %s, want REPLACE", i+1, p.Instructions[i].Action)
		}
	}
}

func TestRuleBased_RegionExclusivity(t *testing.T) {
	// At most one instruction per distinct region among non-priority
	// suggestions, whatever the mix of severities.
	suggestions := []suggestion.Suggestion{
		sugg("A-001", suggestion.SourceReadability, suggestion.SeverityLow, "shared"),
		sugg("B-001", suggestion.SourcePerformance, suggestion.SeverityMedium, "shared"),
		sugg("C-001", suggestion.SourceSecurity, suggestion.SeverityHigh, "shared"),
		sugg("D-001", suggestion.SourceReadability, suggestion.SeverityLow, "alone"),
	}

	p := synthesize(t, suggestions)

	regions := make(map[string]int)
	for _, ins := range p.Instructions {
		regions[ins.TargetRegion]++
	}
	if regions["shared"] != 1 {
		t.Errorf("region %q has %d instructions, want 1", "shared", regions["shared"])
	}
	if regions["alone"] != 1 {
		t.Errorf("region %q has %d instructions, want 1", "alone", regions["alone"])
	}
}

func TestRuleBased_Deterministic(t *testing.T) {
	suggestions := []suggestion.Suggestion{
		sugg("SEC-001", suggestion.SourceSecurity, suggestion.SeverityCritical, "r1"),
		sugg("PERF-001", suggestion.SourcePerformance, suggestion.SeverityHigh, "r2"),
		sugg("READ-001", suggestion.SourceReadability, suggestion.SeverityMedium, "r2"),
		sugg("READ-002", suggestion.SourceReadability, suggestion.SeverityLow, "r3"),
	}

	first := synthesize(t, suggestions)
	second := synthesize(t, suggestions)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical inputs produced different plans (-first +second):\n%s", diff)
	}

	// Input order must not matter either.
	reversed := make([]suggestion.Suggestion, len(suggestions))
	for i, s := range suggestions {
		reversed[len(suggestions)-1-i] = s
	}
	third := synthesize(t, reversed)
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("reordered input produced a different plan (-first +third):\n%s", diff)
	}
}

func TestRuleBased_PriorityThenWinner(t *testing.T) {
	// One Critical security suggestion and one unrelated High performance
	// suggestion: the security fix is step 1, the other step 2.
	suggestions := []suggestion.Suggestion{
		sugg("S1", suggestion.SourceSecurity, suggestion.SeverityCritical, "R1"),
		sugg("S2", suggestion.SourcePerformance, suggestion.SeverityHigh, "R2"),
	}

	p := synthesize(t, suggestions)

	want := [][]string{{"S1"}, {"S2"}}
	if len(p.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(p.Instructions))
	}
	for i, w := range want {
		if diff := cmp.Diff(w, p.Instructions[i].SourceSuggestionIDs); diff != "" {
			t.Errorf("step %d provenance (-want +got):\n%s", i+1, diff)
		}
		if p.Instructions[i].Step != i+1 {
			t.Errorf("instruction %d has step %d", i, p.Instructions[i].Step)
		}
	}
}

func TestRuleBased_RegionalLoserDiscarded(t *testing.T) {
	// Two suggestions on the same region: the higher severity wins, the
	// loser is silently discarded.
	suggestions := []suggestion.Suggestion{
		sugg("S1", suggestion.SourceReadability, suggestion.SeverityMedium, "R1"),
		sugg("S2", suggestion.SourcePerformance, suggestion.SeverityHigh, "R1"),
	}

	p := synthesize(t, suggestions)

	if len(p.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(p.Instructions))
	}
	if diff := cmp.Diff([]string{"S2"}, p.Instructions[0].SourceSuggestionIDs); diff != "" {
		t.Errorf("winner provenance (-want +got):\n%s", diff)
	}
}

func TestRuleBased_TieBrokenByID(t *testing.T) {
	suggestions := []suggestion.Suggestion{
		sugg("B-001", suggestion.SourceReadability, suggestion.SeverityMedium, "R1"),
		sugg("A-001", suggestion.SourcePerformance, suggestion.SeverityMedium, "R1"),
	}

	p := synthesize(t, suggestions)

	if len(p.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(p.Instructions))
	}
	if got := p.Instructions[0].SourceSuggestionIDs[0]; got != "A-001" {
		t.Errorf("tie winner = %q, want A-001 (lowest id)", got)
	}
}

func TestRuleBased_EmptySetYieldsNoOpPlan(t *testing.T) {
	p := synthesize(t, nil)
	if !p.IsNoOp() {
		t.Errorf("empty input should yield a no-op plan, got %d instructions", len(p.Instructions))
	}
	if p.ID == "" {
		t.Error("no-op plan still needs an id")
	}
}

func TestRuleBased_ValidPlanShape(t *testing.T) {
	suggestions := []suggestion.Suggestion{
		sugg("SEC-001", suggestion.SourceSecurity, suggestion.SeverityCritical, "r1"),
		sugg("PERF-001", suggestion.SourcePerformance, suggestion.SeverityHigh, "r2"),
	}

	p := synthesize(t, suggestions)

	if err := p.Validate(suggestion.IDSet(suggestions)); err != nil {
		t.Errorf("rule-based output failed plan validation: %v", err)
	}
}

func TestRuleBased_RejectsMalformedInput(t *testing.T) {
	dup := []suggestion.Suggestion{
		sugg("X-001", suggestion.SourceSecurity, suggestion.SeverityHigh, "r1"),
		sugg("X-001", suggestion.SourcePerformance, suggestion.SeverityLow, "r2"),
	}

	_, err := NewRuleBased().Synthesize(context.Background(), Request{Suggestions: dup})
	if !errors.Is(err, errors.ErrDuplicateSuggestionID) {
		t.Errorf("expected ErrDuplicateSuggestionID, got %v", err)
	}
}
