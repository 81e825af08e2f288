package plan

import (
	"testing"

	"maestro/internal/errors"
)

func validPlan() *Plan {
	return &Plan{
		ID:   "plan-1",
		Goal: GoalBalance,
		Instructions: []Instruction{
			{
				Step:                1,
				Description:         "replace the hashing routine",
				Action:              ActionReplace,
				TargetRegion:        "auth.go#L10-L25",
				NewContent:          "func hash() {}",
				SourceSuggestionIDs: []string{"SEC-001"},
				Rationale:           "weak hash",
			},
			{
				Step:                2,
				Description:         "simplify the loop",
				Action:              ActionRefactorAndModify,
				TargetRegion:        "util.go#L3-L9",
				SourceSuggestionIDs: []string{"READ-001"},
				Rationale:           "deep nesting",
			},
		},
	}
}

func knownIDs() map[string]bool {
	return map[string]bool{"SEC-001": true, "READ-001": true}
}

func TestValidate_AcceptsWellFormedPlan(t *testing.T) {
	if err := validPlan().Validate(knownIDs()); err != nil {
		t.Errorf("Validate returned error for well-formed plan: %v", err)
	}
}

func TestValidate_EmptyPlanIsValid(t *testing.T) {
	p := &Plan{ID: "plan-empty", Goal: GoalBalance}
	if err := p.Validate(knownIDs()); err != nil {
		t.Errorf("empty plan should be valid, got %v", err)
	}
	if !p.IsNoOp() {
		t.Error("empty plan should report IsNoOp")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"empty plan id", func(p *Plan) { p.ID = "" }},
		{"unknown goal", func(p *Plan) { p.Goal = Goal("Speed") }},
		{"steps not starting at 1", func(p *Plan) { p.Instructions[0].Step = 2; p.Instructions[1].Step = 3 }},
		{"non-contiguous steps", func(p *Plan) { p.Instructions[1].Step = 5 }},
		{"unknown action", func(p *Plan) { p.Instructions[0].Action = ActionKind("PATCH") }},
		{"empty target region", func(p *Plan) { p.Instructions[1].TargetRegion = "" }},
		{"empty provenance", func(p *Plan) { p.Instructions[0].SourceSuggestionIDs = nil }},
		{"unknown provenance id", func(p *Plan) { p.Instructions[0].SourceSuggestionIDs = []string{"GHOST-9"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			err := p.Validate(knownIDs())
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, errors.ErrPlanInvalid) {
				t.Errorf("expected ErrPlanInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_NilKnownSetSkipsProvenanceResolution(t *testing.T) {
	p := validPlan()
	p.Instructions[0].SourceSuggestionIDs = []string{"UNSEEN-1"}
	if err := p.Validate(nil); err != nil {
		t.Errorf("nil known set should skip provenance resolution, got %v", err)
	}
}

func TestDeriveID_Deterministic(t *testing.T) {
	a := DeriveID(GoalBalance, []string{"SEC-001", "PERF-002"})
	b := DeriveID(GoalBalance, []string{"SEC-001", "PERF-002"})
	if a != b {
		t.Errorf("same inputs produced different ids: %q vs %q", a, b)
	}

	c := DeriveID(GoalSecurityFocus, []string{"SEC-001", "PERF-002"})
	if a == c {
		t.Error("different goals should produce different ids")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"bare json", `{"plan_id":"p"}`, `{"plan_id":"p"}`, false},
		{"fenced json", "```json\n{\"plan_id\":\"p\"}\n```", `{"plan_id":"p"}`, false},
		{"plan tag", "<plan>{\"plan_id\":\"p\"}</plan>", `{"plan_id":"p"}`, false},
		{"prose around json", "Here is the plan:\n{\"plan_id\":\"p\"}\nDone.", `{"plan_id":"p"}`, false},
		{"empty", "", "", true},
		{"no json", "I could not produce a plan.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_AliasFields(t *testing.T) {
	content := `{
		"plan_id": "plan-x",
		"synthesis_goal": "Balance",
		"instructions": [
			{
				"step": 1,
				"description": "swap hash",
				"action": "REPLACE",
				"target_code_block": "auth.go#L10-L25",
				"new_code": "func hash() {}",
				"source_suggestion_ids": ["SEC-001"],
				"rationale": "weak hash"
			}
		]
	}`

	p, err := Parse(content, map[string]bool{"SEC-001": true})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Instructions[0].TargetRegion != "auth.go#L10-L25" {
		t.Errorf("TargetRegion = %q, want alias value", p.Instructions[0].TargetRegion)
	}
	if p.Instructions[0].NewContent != "func hash() {}" {
		t.Errorf("NewContent = %q, want alias value", p.Instructions[0].NewContent)
	}
}

func TestParse_DefaultsMissingGoalAndID(t *testing.T) {
	p, err := Parse(`{"instructions": []}`, nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Goal != GoalBalance {
		t.Errorf("Goal = %q, want default %q", p.Goal, GoalBalance)
	}
	if p.ID == "" {
		t.Error("expected a derived plan id")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"plan_id": "p",`, nil)
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if !errors.Is(err, errors.ErrOracleMalformedResponse) {
		t.Errorf("expected ErrOracleMalformedResponse, got %v", err)
	}
}

func TestParse_RejectsInvalidStructure(t *testing.T) {
	content := `{
		"plan_id": "plan-y",
		"synthesis_goal": "Balance",
		"instructions": [
			{"step": 1, "action": "REPLACE", "target_region": "f#L1", "source_suggestion_ids": []}
		]
	}`

	_, err := Parse(content, nil)
	if err == nil {
		t.Fatal("expected structural validation to fail")
	}
	if !errors.Is(err, errors.ErrPlanInvalid) {
		t.Errorf("expected ErrPlanInvalid, got %v", err)
	}
}
