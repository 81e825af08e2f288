package analyzer

import (
	"context"

	"maestro/internal/artifact"
	"maestro/internal/suggestion"
)

// DimensionOutcome records what one analyzer contributed to a collection
// pass. A hard failure is treated like an empty result for synthesis
// purposes but stays distinguishable for reporting.
type DimensionOutcome struct {
	Dimension suggestion.Source `json:"dimension"`
	Count     int               `json:"count"`
	Failed    bool              `json:"failed,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Collect runs every analyzer against the artifact and returns the union of
// their suggestions plus a per-dimension outcome record. Analyzer failures
// do not abort collection.
func Collect(ctx context.Context, analyzers []Analyzer, art artifact.Artifact) ([]suggestion.Suggestion, []DimensionOutcome) {
	var union []suggestion.Suggestion
	outcomes := make([]DimensionOutcome, 0, len(analyzers))

	for _, a := range analyzers {
		outcome := DimensionOutcome{Dimension: a.Dimension()}
		suggestions, err := a.Analyze(ctx, art)
		if err != nil {
			outcome.Failed = true
			outcome.Error = err.Error()
		} else {
			outcome.Count = len(suggestions)
			union = append(union, suggestions...)
		}
		outcomes = append(outcomes, outcome)
	}

	return union, outcomes
}
