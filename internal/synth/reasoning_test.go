package synth

import (
	"context"
	"strings"
	"testing"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/oracle"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

const goodPlanResponse = `{
	"plan_id": "plan-ok",
	"synthesis_goal": "Balance",
	"instructions": [
		{
			"step": 1,
			"description": "swap hash",
			"action": "REPLACE",
			"target_region": "auth.go#L10-L25",
			"new_content": "func hash() {}",
			"source_suggestion_ids": ["SEC-001"],
			"rationale": "weak hash"
		}
	]
}`

func reasoningRequest() Request {
	return Request{
		Artifact: artifact.Artifact{Name: "auth.go", Content: "package auth\n"},
		Suggestions: []suggestion.Suggestion{
			sugg("SEC-001", suggestion.SourceSecurity, suggestion.SeverityHigh, "auth.go#L10-L25"),
		},
		Goal: plan.GoalBalance,
	}
}

func TestReasoning_AcceptsValidPlan(t *testing.T) {
	o := oracle.NewScripted(goodPlanResponse)
	s := NewReasoning(o, nil)

	p, err := s.Synthesize(context.Background(), reasoningRequest())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if p.ID != "plan-ok" {
		t.Errorf("plan id = %q, want plan-ok", p.ID)
	}
	if p.StepCount() != 1 {
		t.Errorf("steps = %d, want 1", p.StepCount())
	}
}

func TestReasoning_PromptCarriesFeedbackOnRetry(t *testing.T) {
	o := oracle.NewScripted(goodPlanResponse)
	s := NewReasoning(o, nil)

	req := reasoningRequest()
	req.Feedback = "the previous candidate had a fatal structural defect"

	if _, err := s.Synthesize(context.Background(), req); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	sent := o.Requests[0].Prompt
	if !strings.Contains(sent, "fatal structural defect") {
		t.Error("retry prompt should carry the feedback text")
	}
	if !strings.Contains(sent, "auth.go") {
		t.Error("prompt should carry the artifact")
	}
	if !strings.Contains(sent, "SEC-001") {
		t.Error("prompt should carry the suggestion set")
	}
}

func TestReasoning_NoFeedbackSectionOnFirstAttempt(t *testing.T) {
	o := oracle.NewScripted(goodPlanResponse)
	s := NewReasoning(o, nil)

	if _, err := s.Synthesize(context.Background(), reasoningRequest()); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if strings.Contains(o.Requests[0].Prompt, "previous failed attempt") {
		t.Error("first attempt prompt should not mention prior attempts")
	}
}

func TestReasoning_OracleFailureIsSynthesisFailure(t *testing.T) {
	o := oracle.NewScripted().FailWith(0, errors.ErrOracleEmptyResponse)
	s := NewReasoning(o, nil)

	_, err := s.Synthesize(context.Background(), reasoningRequest())
	var synthErr *errors.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if !errors.Is(err, errors.ErrOracleEmptyResponse) {
		t.Errorf("cause should be ErrOracleEmptyResponse, got %v", err)
	}
}

func TestReasoning_RejectsPlanWithUnknownProvenance(t *testing.T) {
	response := strings.ReplaceAll(goodPlanResponse, "SEC-001", "GHOST-1")
	o := oracle.NewScripted(response)
	s := NewReasoning(o, nil)

	_, err := s.Synthesize(context.Background(), reasoningRequest())
	var synthErr *errors.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if !errors.Is(err, errors.ErrPlanInvalid) {
		t.Errorf("cause should be ErrPlanInvalid, got %v", err)
	}
}

func TestReasoning_RejectsMalformedResponse(t *testing.T) {
	o := oracle.NewScripted("I refuse to answer in JSON.")
	s := NewReasoning(o, nil)

	_, err := s.Synthesize(context.Background(), reasoningRequest())
	if !errors.Is(err, errors.ErrOracleMalformedResponse) {
		t.Errorf("expected ErrOracleMalformedResponse in chain, got %v", err)
	}
}

func TestReasoning_EmptyInstructionListIsNoOp(t *testing.T) {
	o := oracle.NewScripted(`{"plan_id":"plan-noop","synthesis_goal":"Balance","instructions":[]}`)
	s := NewReasoning(o, nil)

	p, err := s.Synthesize(context.Background(), reasoningRequest())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !p.IsNoOp() {
		t.Error("expected a no-op plan")
	}
}

func TestNew_ModeSelection(t *testing.T) {
	s, err := New(ModeRuleBased, nil, nil)
	if err != nil {
		t.Fatalf("New(rule-based) returned error: %v", err)
	}
	if s.Mode() != ModeRuleBased {
		t.Errorf("Mode() = %s", s.Mode())
	}

	if _, err := New(ModeReasoning, nil, nil); err == nil {
		t.Error("reasoning mode without an oracle should fail")
	}

	s, err = New(ModeReasoning, oracle.NewScripted(), nil)
	if err != nil {
		t.Fatalf("New(reasoning) returned error: %v", err)
	}
	if s.Mode() != ModeReasoning {
		t.Errorf("Mode() = %s", s.Mode())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"rule-based", ModeRuleBased, false},
		{"rule_based", ModeRuleBased, false},
		{"Reasoning", ModeReasoning, false},
		{"magic", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}
