package executor

import (
	"context"
	"testing"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/oracle"
	"maestro/internal/plan"
)

var src = artifact.Artifact{
	Name:    "util.go",
	Content: "line1\nline2\nline3\nline4\nline5",
}

func step(n int, action plan.ActionKind, region, content string) plan.Instruction {
	return plan.Instruction{
		Step:                n,
		Description:         "edit",
		Action:              action,
		TargetRegion:        region,
		NewContent:          content,
		SourceSuggestionIDs: []string{"X-001"},
	}
}

func TestLocal_Replace(t *testing.T) {
	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionReplace, "util.go#L2-L3", "newA\nnewB"),
	}}

	got, err := NewLocal().Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	want := "line1\nnewA\nnewB\nline4\nline5"
	if got.Content != want {
		t.Errorf("Content = %q, want %q", got.Content, want)
	}
	if src.Content != "line1\nline2\nline3\nline4\nline5" {
		t.Error("original artifact mutated")
	}
}

func TestLocal_Delete(t *testing.T) {
	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionDelete, "util.go#L4-L5", ""),
	}}

	got, err := NewLocal().Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != "line1\nline2\nline3" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestLocal_AddInsertsBeforeRegion(t *testing.T) {
	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionAdd, "util.go#L3-L3", "inserted"),
	}}

	got, err := NewLocal().Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != "line1\nline2\ninserted\nline3\nline4\nline5" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestLocal_MultipleEditsBottomUp(t *testing.T) {
	// Two edits on different regions; applying bottom-up keeps the first
	// region's line numbers valid.
	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionReplace, "util.go#L1-L1", "top"),
		step(2, plan.ActionReplace, "util.go#L5-L5", "bottom"),
	}}

	got, err := NewLocal().Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != "top\nline2\nline3\nline4\nbottom" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestLocal_NoOpPlanReturnsOriginal(t *testing.T) {
	p := &plan.Plan{ID: "p0", Goal: plan.GoalBalance}
	got, err := NewLocal().Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != src.Content {
		t.Error("no-op plan should leave the artifact unchanged")
	}
}

func TestLocal_Failures(t *testing.T) {
	tests := []struct {
		name string
		ins  plan.Instruction
	}{
		{"opaque region", step(1, plan.ActionReplace, "somewhere in the file", "x")},
		{"wrong artifact", step(1, plan.ActionReplace, "other.go#L1-L2", "x")},
		{"range beyond end", step(1, plan.ActionReplace, "util.go#L4-L99", "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{tt.ins}}
			_, err := NewLocal().Apply(context.Background(), src, p)
			var execErr *errors.ExecutionError
			if !errors.As(err, &execErr) {
				t.Fatalf("expected ExecutionError, got %v", err)
			}
			if execErr.PlanID != "p1" {
				t.Errorf("PlanID = %q, want p1", execErr.PlanID)
			}
		})
	}
}

func TestOracle_ExtractsFencedCandidate(t *testing.T) {
	o := oracle.NewScripted("```go\npackage util\n\nfunc F() {}\n```")
	e := NewOracle(o, nil)

	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionReplace, "util.go#L1-L1", "func F() {}"),
	}}

	got, err := e.Apply(context.Background(), src, p)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != "package util\n\nfunc F() {}" {
		t.Errorf("Content = %q", got.Content)
	}
	if got.Name != "util.go" {
		t.Errorf("Name = %q, want util.go", got.Name)
	}
}

func TestOracle_FailureIsExecutionError(t *testing.T) {
	o := oracle.NewScripted().FailWith(0, errors.New("service down"))
	e := NewOracle(o, nil)

	p := &plan.Plan{ID: "p1", Goal: plan.GoalBalance, Instructions: []plan.Instruction{
		step(1, plan.ActionReplace, "util.go#L1-L1", "x"),
	}}

	_, err := e.Apply(context.Background(), src, p)
	var execErr *errors.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
}

func TestOracle_NoOpSkipsCall(t *testing.T) {
	o := oracle.NewScripted()
	e := NewOracle(o, nil)

	got, err := e.Apply(context.Background(), src, &plan.Plan{ID: "p0", Goal: plan.GoalBalance})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got.Content != src.Content {
		t.Error("no-op plan should leave the artifact unchanged")
	}
	if o.Calls() != 0 {
		t.Errorf("oracle called %d times for a no-op plan", o.Calls())
	}
}
