package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maestro/internal/errors"
	"maestro/internal/logging"
	"maestro/internal/oracle"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

const reasoningSystemPrompt = `You are a senior software architect synthesizing code-improvement suggestions into a single execution plan.

You receive an artifact, a set of suggestions from dimension analyzers, a synthesis goal, and sometimes feedback from a prior failed attempt. Resolve conflicts between suggestions yourself: when suggestions target the same region, decide which change (or combination) best serves the goal.

Respond with a single JSON object:
{
  "plan_id": "plan-<short id>",
  "synthesis_goal": "<the goal you were given>",
  "instructions": [
    {
      "step": 1,
      "description": "...",
      "action": "REPLACE" | "ADD" | "DELETE" | "REFACTOR_AND_MODIFY",
      "target_region": "...",
      "new_content": "...",
      "source_suggestion_ids": ["..."],
      "rationale": "..."
    }
  ]
}

Steps must be numbered contiguously from 1. Every source_suggestion_ids entry must be an ID from the provided suggestion set. An empty instructions array means no changes are warranted.`

// Reasoning delegates conflict resolution to an oracle. It frames the
// request, then acts as a strict parse-then-validate gate on the answer:
// any response that is absent, malformed, or structurally invalid becomes a
// synthesis failure. No unvalidated oracle data flows past this component.
type Reasoning struct {
	oracle oracle.Oracle
	logger *logging.Logger
}

// NewReasoning creates the reasoning-based synthesizer. A nil logger is
// replaced with a no-op logger.
func NewReasoning(o oracle.Oracle, logger *logging.Logger) *Reasoning {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Reasoning{oracle: o, logger: logger.WithStage("synthesize")}
}

// Mode identifies the strategy.
func (r *Reasoning) Mode() Mode {
	return ModeReasoning
}

// Synthesize asks the oracle for a plan and validates it against the plan
// model before letting it out.
func (r *Reasoning) Synthesize(ctx context.Context, req Request) (*plan.Plan, error) {
	if err := suggestion.ValidateSet(req.Suggestions); err != nil {
		return nil, err
	}
	goal := req.Goal
	if goal == "" {
		goal = plan.GoalBalance
	}

	prompt, err := r.buildPrompt(req, goal)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("requesting plan from oracle",
		"suggestions", len(req.Suggestions),
		"goal", goal.String(),
		"retry", req.Feedback != "")

	content, err := r.oracle.Complete(ctx, oracle.Request{
		System:    reasoningSystemPrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return nil, errors.NewSynthesisError("oracle call failed", err)
	}

	p, err := plan.Parse(content, suggestion.IDSet(req.Suggestions))
	if err != nil {
		return nil, errors.NewSynthesisError("oracle plan rejected", err)
	}

	r.logger.Info("plan accepted", "plan_id", p.ID, "steps", p.StepCount())
	return p, nil
}

func (r *Reasoning) buildPrompt(req Request, goal plan.Goal) (string, error) {
	suggestionsJSON, err := json.MarshalIndent(req.Suggestions, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "serializing suggestions")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Synthesis goal: %s\n\n", goal)

	if req.Feedback != "" {
		b.WriteString("## Feedback from the previous failed attempt\n")
		b.WriteString(req.Feedback)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Artifact: %s\n```\n%s\n```\n\n", req.Artifact.Name, req.Artifact.Content)
	fmt.Fprintf(&b, "## Suggestions\n%s\n", suggestionsJSON)

	return b.String(), nil
}
