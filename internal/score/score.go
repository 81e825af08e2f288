// Package score maps raw quality metrics into banded dimension scores and a
// pass/fail decision.
//
// The band values and the 85-point threshold are fixed. The security veto is
// checked explicitly and independently of the total even though the current
// band values already make a vetoed total unreachable; the veto must hold if
// the bands ever change.
package score

import (
	"fmt"

	"maestro/internal/errors"
)

// Threshold is the minimum passing total.
const Threshold = 85

// -----------------------------------------------------------------------------
// Raw Metrics
// -----------------------------------------------------------------------------

// SecurityFinding is the highest-severity security issue found in a
// candidate artifact, as reported by the security metric collector.
type SecurityFinding string

const (
	// FindingHigh triggers the security veto.
	FindingHigh SecurityFinding = "High"

	// FindingMedium is a moderate security finding.
	FindingMedium SecurityFinding = "Medium"

	// FindingLow is a minor security finding.
	FindingLow SecurityFinding = "Low"

	// FindingNone means no security issues were found.
	FindingNone SecurityFinding = "None"
)

// String returns the string representation of the finding.
func (f SecurityFinding) String() string {
	return string(f)
}

// IsValid returns true if this is a recognized finding level.
func (f SecurityFinding) IsValid() bool {
	switch f {
	case FindingHigh, FindingMedium, FindingLow, FindingNone:
		return true
	default:
		return false
	}
}

// RawMetrics is the record the external metric collectors produce for one
// candidate artifact.
type RawMetrics struct {
	// SecurityHighestSeverity is the worst security finding.
	SecurityHighestSeverity SecurityFinding `json:"security_highest_severity"`

	// CyclomaticComplexity is the candidate's readability proxy,
	// non-negative.
	CyclomaticComplexity int `json:"cyclomatic_complexity"`

	// ImprovementPercent is the performance change relative to the
	// baseline. Positive means faster.
	ImprovementPercent float64 `json:"improvement_percent"`
}

// Validate checks the raw metric record's shape.
func (m RawMetrics) Validate() error {
	if !m.SecurityHighestSeverity.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("unknown security finding %q", m.SecurityHighestSeverity)).
			WithField("security_highest_severity").WithValue(string(m.SecurityHighestSeverity))
	}
	if m.CyclomaticComplexity < 0 {
		return errors.NewValidationError("cyclomatic complexity cannot be negative").
			WithField("cyclomatic_complexity").WithValue(m.CyclomaticComplexity)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Quality Report
// -----------------------------------------------------------------------------

// Decision is the scorer's verdict.
type Decision string

const (
	// DecisionSuccess means the candidate passed.
	DecisionSuccess Decision = "Success"

	// DecisionFailure means the candidate failed, by defect, veto, or
	// low total.
	DecisionFailure Decision = "Failure"
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}

// QualityReport is the immutable result of scoring one candidate artifact.
// One report is produced per attempt.
type QualityReport struct {
	// Attempt records which control-loop attempt produced this report.
	Attempt int `json:"attempt"`

	// Security, Readability, and Performance are the banded dimension
	// scores.
	Security    int `json:"security"`
	Readability int `json:"readability"`
	Performance int `json:"performance"`

	// Total is the sum of the dimension scores, out of 100.
	Total int `json:"total"`

	// Decision is Success iff Total >= Threshold and the security veto
	// did not fire.
	Decision Decision `json:"decision"`

	// StructuralDefect marks a report produced by the precondition gate
	// rather than metric scoring. The control loop builds defect-specific
	// retry feedback from this flag.
	StructuralDefect bool `json:"structural_defect,omitempty"`

	// Rationale summarizes the deciding factor in human-readable form.
	Rationale string `json:"rationale"`

	// Metrics echoes the raw inputs, absent for structural defects.
	Metrics *RawMetrics `json:"metrics,omitempty"`
}

// Passed returns true if the decision is Success.
func (r QualityReport) Passed() bool {
	return r.Decision == DecisionSuccess
}

// -----------------------------------------------------------------------------
// Scoring
// -----------------------------------------------------------------------------

func securityScore(f SecurityFinding) int {
	switch f {
	case FindingHigh:
		return 0 // veto value
	case FindingMedium:
		return 15
	case FindingLow:
		return 30
	case FindingNone:
		return 40
	default:
		return 0
	}
}

func readabilityScore(complexity int) int {
	switch {
	case complexity >= 1 && complexity <= 10:
		return 30
	case complexity >= 11 && complexity <= 20:
		return 15
	default:
		return 0
	}
}

func performanceScore(improvement float64) int {
	switch {
	case improvement >= 15:
		return 30
	case improvement >= 5:
		return 15
	case improvement >= 0:
		return 5
	default:
		return 0
	}
}

// Score maps raw metrics into a QualityReport. It is a pure function; the
// structural precondition gate is the Scorer's job, not this one's.
func Score(metrics RawMetrics) QualityReport {
	sec := securityScore(metrics.SecurityHighestSeverity)
	read := readabilityScore(metrics.CyclomaticComplexity)
	perf := performanceScore(metrics.ImprovementPercent)
	total := sec + read + perf

	m := metrics
	report := QualityReport{
		Security:    sec,
		Readability: read,
		Performance: perf,
		Total:       total,
		Metrics:     &m,
	}

	// The veto is checked independently of the total.
	switch {
	case sec == 0:
		report.Decision = DecisionFailure
		report.Rationale = "security veto triggered"
	case total < Threshold:
		report.Decision = DecisionFailure
		report.Rationale = fmt.Sprintf("total %d below threshold %d", total, Threshold)
	default:
		report.Decision = DecisionSuccess
		report.Rationale = fmt.Sprintf("total %d meets threshold %d", total, Threshold)
	}
	return report
}

// StructuralDefectReport builds the short-circuit report for a candidate
// that failed the structural-validity precondition: all dimension scores
// are zero and the failure category is distinguished from a quality
// shortfall.
func StructuralDefectReport(defect error) QualityReport {
	detail := "artifact failed structural validation"
	if defect != nil {
		detail = defect.Error()
	}
	return QualityReport{
		Decision:         DecisionFailure,
		StructuralDefect: true,
		Rationale:        fmt.Sprintf("structural defect: %s", detail),
	}
}
