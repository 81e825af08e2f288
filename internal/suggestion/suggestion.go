// Package suggestion defines the immutable value types for improvement
// proposals produced by the dimension analyzers.
//
// A Suggestion is created by an external analyzer, consumed read-only by a
// synthesizer, and discarded once a plan has been produced. Suggestions are
// never mutated after construction, so they may be freely shared between
// concurrent artifact pipelines.
package suggestion

import (
	"fmt"
	"sort"

	"maestro/internal/errors"
)

// -----------------------------------------------------------------------------
// Source
// -----------------------------------------------------------------------------

// Source identifies which dimension analyzer produced a suggestion.
type Source string

const (
	// SourcePerformance tags suggestions from the performance analyzer.
	SourcePerformance Source = "performance"

	// SourceReadability tags suggestions from the readability analyzer.
	SourceReadability Source = "readability"

	// SourceSecurity tags suggestions from the security analyzer.
	// Security is the authoritative dimension for the synthesizer's
	// priority class.
	SourceSecurity Source = "security"
)

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}

// IsValid returns true if this is a recognized source value.
func (s Source) IsValid() bool {
	switch s {
	case SourcePerformance, SourceReadability, SourceSecurity:
		return true
	default:
		return false
	}
}

// Sources returns all recognized source tags in a stable order.
func Sources() []Source {
	return []Source{SourcePerformance, SourceReadability, SourceSecurity}
}

// -----------------------------------------------------------------------------
// Severity
// -----------------------------------------------------------------------------

// Severity is an ordered classification of how important a suggestion is.
//
// The ordering Critical > High > Medium > Low drives both the synthesizer's
// priority class (Critical security suggestions are always applied first)
// and per-region winner selection between conflicting suggestions.
type Severity string

const (
	// SeverityCritical is the maximum ordinal. Critical security suggestions
	// form the synthesizer's priority class.
	SeverityCritical Severity = "Critical"

	// SeverityHigh indicates an important suggestion.
	SeverityHigh Severity = "High"

	// SeverityMedium indicates a moderate suggestion.
	SeverityMedium Severity = "Medium"

	// SeverityLow is the minimum ordinal.
	SeverityLow Severity = "Low"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if this is a recognized severity value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Rank returns the severity's ordinal, higher meaning more severe.
// Unknown severities rank below SeverityLow.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Suggestion
// -----------------------------------------------------------------------------

// Suggestion represents a single improvement proposal.
//
// TargetRegion is an opaque, equality-comparable locator (for example
// "file.go#L10-L15"). The pipeline never interprets it beyond exact
// equality: two suggestions conflict if and only if their target regions
// are identical strings. ProposedChange is likewise opaque text that only
// the executor interprets.
type Suggestion struct {
	// ID uniquely identifies this suggestion within one synthesis call.
	// Analyzers follow a pattern like "PERF-001" or "SEC-002".
	ID string `json:"suggestion_id" yaml:"suggestion_id"`

	// Source tags the analyzer dimension that produced this suggestion.
	Source Source `json:"source" yaml:"source"`

	// Title is a one-line summary of the proposal.
	Title string `json:"title" yaml:"title"`

	// TargetRegion locates where in the artifact the change applies.
	TargetRegion string `json:"target_region" yaml:"target_region"`

	// Severity classifies how important the suggestion is.
	Severity Severity `json:"severity" yaml:"severity"`

	// Rationale explains why the change is needed.
	Rationale string `json:"rationale" yaml:"rationale"`

	// ProposedChange is the suggested replacement content. It is opaque
	// to the pipeline core.
	ProposedChange string `json:"proposed_change" yaml:"proposed_change"`
}

// IsPriority returns true if this suggestion belongs to the synthesizer's
// priority class: a security suggestion at the maximum severity.
func (s *Suggestion) IsPriority() bool {
	return s.Source == SourceSecurity && s.Severity == SeverityCritical
}

// Validate checks a single suggestion's shape.
func (s *Suggestion) Validate() error {
	if s.ID == "" {
		return errors.NewValidationError("suggestion id cannot be empty").WithField("suggestion_id")
	}
	if !s.Source.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("unknown source %q", s.Source)).
			WithField("source").WithValue(string(s.Source))
	}
	if !s.Severity.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("unknown severity %q", s.Severity)).
			WithField("severity").WithValue(string(s.Severity)).
			WithCause(errors.ErrUnknownSeverity)
	}
	if s.TargetRegion == "" {
		return errors.NewValidationError("suggestion target region cannot be empty").
			WithField("target_region")
	}
	return nil
}

// ValidateSet checks the shape invariants of a suggestion set destined for
// one synthesis call: each suggestion is individually well formed and IDs
// are unique across the set. A violation is a precondition failure from an
// upstream collaborator and is surfaced as an invalid-input error.
func ValidateSet(suggestions []Suggestion) error {
	seen := make(map[string]bool, len(suggestions))
	for i := range suggestions {
		s := &suggestions[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return errors.NewValidationError(fmt.Sprintf("suggestion id %q appears more than once", s.ID)).
				WithField("suggestion_id").WithValue(s.ID).
				WithCause(errors.ErrDuplicateSuggestionID)
		}
		seen[s.ID] = true
	}
	return nil
}

// IDSet returns the set of suggestion IDs, for provenance checks.
func IDSet(suggestions []Suggestion) map[string]bool {
	ids := make(map[string]bool, len(suggestions))
	for i := range suggestions {
		ids[suggestions[i].ID] = true
	}
	return ids
}

// SortStable orders suggestions by severity descending, then ID ascending.
// It returns a new slice; the input is not modified.
func SortStable(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity.Rank() != sorted[j].Severity.Rank() {
			return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
