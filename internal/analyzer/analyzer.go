// Package analyzer produces improvement suggestions for an artifact, one
// analyzer per quality dimension.
//
// The oracle-backed analyzers are a parse-then-validate boundary like the
// reasoning synthesizer: raw oracle output is coerced into the suggestion
// model or rejected, never passed along unvalidated.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/logging"
	"maestro/internal/oracle"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
)

// Analyzer examines an artifact and proposes improvements for one
// dimension. An empty result is a confirmed "nothing to suggest", which is
// not an error; a returned error is a hard failure of the analyzer itself.
type Analyzer interface {
	Analyze(ctx context.Context, a artifact.Artifact) ([]suggestion.Suggestion, error)

	// Dimension returns the source tag this analyzer produces.
	Dimension() suggestion.Source
}

var dimensionPrompts = map[suggestion.Source]string{
	suggestion.SourcePerformance: `You are a performance analyst. Find the changes that would make this code measurably faster: unnecessary allocations, repeated work inside loops, inefficient data structures, avoidable I/O.`,
	suggestion.SourceReadability: `You are a readability reviewer. Find the changes that would make this code easier to follow: deep nesting, misleading names, oversized functions, duplicated logic.`,
	suggestion.SourceSecurity:    `You are a security auditor. Find vulnerabilities: injection, weak cryptography, unchecked input, secret handling, unsafe defaults.`,
}

const analyzerResponseShape = `

Respond with a JSON object:
{
  "suggestions": [
    {
      "suggestion_id": "%[1]s-001",
      "source": "%[2]s",
      "title": "...",
      "target_region": "<file>#L<start>-L<end>",
      "severity": "Critical" | "High" | "Medium" | "Low",
      "rationale": "...",
      "proposed_change": "..."
    }
  ]
}

Number suggestion_id values sequentially with the %[1]s- prefix. An empty suggestions array means you found nothing worth changing.`

var dimensionIDPrefix = map[suggestion.Source]string{
	suggestion.SourcePerformance: "PERF",
	suggestion.SourceReadability: "READ",
	suggestion.SourceSecurity:    "SEC",
}

// OracleAnalyzer is an oracle-backed Analyzer for one dimension.
type OracleAnalyzer struct {
	dimension suggestion.Source
	oracle    oracle.Oracle
	logger    *logging.Logger
}

// NewOracleAnalyzer creates an analyzer for the given dimension. A nil
// logger is replaced with a no-op logger.
func NewOracleAnalyzer(dimension suggestion.Source, o oracle.Oracle, logger *logging.Logger) (*OracleAnalyzer, error) {
	if !dimension.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown analyzer dimension %q", dimension)).
			WithField("dimension").WithValue(string(dimension))
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &OracleAnalyzer{
		dimension: dimension,
		oracle:    o,
		logger:    logger.WithStage("collect").With("dimension", dimension.String()),
	}, nil
}

// Dimension returns the source tag this analyzer produces.
func (a *OracleAnalyzer) Dimension() suggestion.Source {
	return a.dimension
}

// Analyze asks the oracle for suggestions and validates them against the
// suggestion model. Every returned suggestion carries this analyzer's
// dimension tag regardless of what the oracle claimed.
func (a *OracleAnalyzer) Analyze(ctx context.Context, art artifact.Artifact) ([]suggestion.Suggestion, error) {
	system := dimensionPrompts[a.dimension] +
		fmt.Sprintf(analyzerResponseShape, dimensionIDPrefix[a.dimension], a.dimension)

	content, err := a.oracle.Complete(ctx, oracle.Request{
		System:    system,
		Prompt:    fmt.Sprintf("## Artifact: %s\n```\n%s\n```", art.Name, art.Content),
		ForceJSON: true,
	})
	if err != nil {
		return nil, errors.NewAnalyzerError("analysis request failed", err).WithDimension(a.dimension.String())
	}

	suggestions, err := parseSuggestions(content, a.dimension)
	if err != nil {
		return nil, errors.NewAnalyzerError("analysis response rejected", err).WithDimension(a.dimension.String())
	}

	a.logger.Debug("analysis complete", "artifact", art.Name, "suggestions", len(suggestions))
	return suggestions, nil
}

// parseSuggestions coerces a raw oracle response into validated suggestions
// tagged with the analyzer's dimension.
func parseSuggestions(content string, dimension suggestion.Source) ([]suggestion.Suggestion, error) {
	payload, err := plan.ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var result struct {
		Suggestions []suggestion.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, errors.Wrap(errors.ErrOracleMalformedResponse, fmt.Sprintf("decoding suggestions: %v", err))
	}

	for i := range result.Suggestions {
		result.Suggestions[i].Source = dimension
	}
	if err := suggestion.ValidateSet(result.Suggestions); err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}
