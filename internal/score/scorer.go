package score

import (
	"context"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/logging"
)

// SecurityCollector measures the worst security finding in a candidate.
type SecurityCollector interface {
	Measure(ctx context.Context, candidate artifact.Artifact) (SecurityFinding, error)
}

// ReadabilityCollector measures a candidate's cyclomatic complexity.
type ReadabilityCollector interface {
	Measure(ctx context.Context, candidate artifact.Artifact) (int, error)
}

// PerformanceCollector measures a candidate's performance change relative
// to the baseline artifact.
type PerformanceCollector interface {
	Measure(ctx context.Context, baseline, candidate artifact.Artifact) (float64, error)
}

// Collectors bundles one collector per dimension.
type Collectors struct {
	Security    SecurityCollector
	Readability ReadabilityCollector
	Performance PerformanceCollector
}

// Scorer runs the structural precondition gate, gathers raw metrics from
// the collectors, and bands them into a QualityReport.
type Scorer struct {
	validator  artifact.Validator
	collectors Collectors
	logger     *logging.Logger
}

// NewScorer creates a Scorer. A nil validator disables the structural gate;
// a nil logger is replaced with a no-op logger.
func NewScorer(validator artifact.Validator, collectors Collectors, logger *logging.Logger) *Scorer {
	if validator == nil {
		validator = artifact.NopValidator{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scorer{
		validator:  validator,
		collectors: collectors,
		logger:     logger.WithStage("score"),
	}
}

// Evaluate scores one candidate against its baseline. A structural defect
// is a Failure report, not an error; an error means a metric collector
// itself failed.
func (s *Scorer) Evaluate(ctx context.Context, baseline, candidate artifact.Artifact) (QualityReport, error) {
	if err := s.validator.Validate(candidate); err != nil {
		s.logger.Warn("candidate failed structural gate", "artifact", candidate.Name, "defect", err.Error())
		return StructuralDefectReport(err), nil
	}

	metrics, err := s.collect(ctx, baseline, candidate)
	if err != nil {
		return QualityReport{}, err
	}
	if err := metrics.Validate(); err != nil {
		return QualityReport{}, errors.NewScoringError("collector returned malformed metrics", err)
	}

	report := Score(metrics)
	s.logger.Info("candidate scored",
		"artifact", candidate.Name,
		"total", report.Total,
		"decision", report.Decision.String())
	return report, nil
}

func (s *Scorer) collect(ctx context.Context, baseline, candidate artifact.Artifact) (RawMetrics, error) {
	var metrics RawMetrics

	finding, err := s.collectors.Security.Measure(ctx, candidate)
	if err != nil {
		return metrics, errors.NewScoringError("security metric failed", err).WithDimension("security")
	}
	metrics.SecurityHighestSeverity = finding

	complexity, err := s.collectors.Readability.Measure(ctx, candidate)
	if err != nil {
		return metrics, errors.NewScoringError("readability metric failed", err).WithDimension("readability")
	}
	metrics.CyclomaticComplexity = complexity

	improvement, err := s.collectors.Performance.Measure(ctx, baseline, candidate)
	if err != nil {
		return metrics, errors.NewScoringError("performance metric failed", err).WithDimension("performance")
	}
	metrics.ImprovementPercent = improvement

	return metrics, nil
}
