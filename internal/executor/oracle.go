package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/logging"
	"maestro/internal/oracle"
	"maestro/internal/plan"
)

const executorSystemPrompt = `You are a precise code editor. You receive an artifact and an ordered execution plan. Apply every instruction faithfully, in step order, and return the COMPLETE updated artifact.

Return only the updated artifact content inside a single fenced code block. No commentary.`

var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n(.*?)\\n?```")

// Oracle delegates plan application to the reasoning engine and extracts
// the rewritten artifact from its response.
type Oracle struct {
	oracle oracle.Oracle
	logger *logging.Logger
}

// NewOracle creates an oracle-backed executor. A nil logger is replaced
// with a no-op logger.
func NewOracle(o oracle.Oracle, logger *logging.Logger) *Oracle {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Oracle{oracle: o, logger: logger.WithStage("execute")}
}

// Apply sends the artifact and plan to the oracle and returns the candidate
// built from its response. A no-op plan short-circuits without a call.
func (e *Oracle) Apply(ctx context.Context, a artifact.Artifact, p *plan.Plan) (artifact.Artifact, error) {
	if p.IsNoOp() {
		return a, nil
	}

	prompt := fmt.Sprintf("## Artifact: %s\n```\n%s\n```\n\n## Plan\n%s", a.Name, a.Content, p.Summary())
	for _, ins := range p.Instructions {
		if ins.NewContent != "" {
			prompt += fmt.Sprintf("\n\n### Step %d new content\n```\n%s\n```", ins.Step, ins.NewContent)
		}
	}

	content, err := e.oracle.Complete(ctx, oracle.Request{
		System: executorSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return artifact.Artifact{}, errors.NewExecutionError("oracle call failed", err).WithPlanID(p.ID)
	}

	candidate := extractArtifact(content)
	if strings.TrimSpace(candidate) == "" {
		return artifact.Artifact{}, errors.NewExecutionError("oracle returned no artifact content", errors.ErrOracleEmptyResponse).
			WithPlanID(p.ID)
	}

	e.logger.Info("plan applied", "plan_id", p.ID, "candidate_bytes", len(candidate))
	return a.WithContent(candidate), nil
}

// extractArtifact pulls the artifact body out of the response, preferring a
// fenced block and falling back to the raw text.
func extractArtifact(content string) string {
	if m := fencedBlockRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return strings.TrimSpace(content)
}
