package cmd

import (
	"fmt"

	"maestro/internal/analyzer"
	"maestro/internal/artifact"
	"maestro/internal/config"
	"maestro/internal/control"
	"maestro/internal/errors"
	"maestro/internal/executor"
	"maestro/internal/logging"
	"maestro/internal/oracle"
	"maestro/internal/plan"
	"maestro/internal/score"
	"maestro/internal/suggestion"
	"maestro/internal/synth"
)

// newOracle builds the HTTP oracle client from configuration.
func newOracle(cfg *config.Config, logger *logging.Logger) oracle.Oracle {
	return oracle.NewClient(oracle.ClientConfig{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey(),
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Timeout:     cfg.Oracle.Timeout(),
	}, logger)
}

// newAnalyzers builds one oracle analyzer per configured dimension.
func newAnalyzers(cfg *config.Config, o oracle.Oracle, logger *logging.Logger) ([]analyzer.Analyzer, error) {
	analyzers := make([]analyzer.Analyzer, 0, len(cfg.Analyzers.Dimensions))
	for _, dim := range cfg.Analyzers.Dimensions {
		a, err := analyzer.NewOracleAnalyzer(suggestion.Source(dim), o, logger)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}

// newExecutor selects the plan executor from configuration.
func newExecutor(cfg *config.Config, o oracle.Oracle, logger *logging.Logger) (executor.Executor, error) {
	switch cfg.Executor.Mode {
	case "local":
		return executor.NewLocal(), nil
	case "oracle":
		return executor.NewOracle(o, logger), nil
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown executor mode %q", cfg.Executor.Mode)).
			WithField("executor.mode").WithValue(cfg.Executor.Mode)
	}
}

// newScorer assembles the quality scorer: the structural gate if enabled,
// static complexity for readability, and oracle judges for the security
// and performance dimensions.
func newScorer(cfg *config.Config, o oracle.Oracle, logger *logging.Logger) *score.Scorer {
	var validator artifact.Validator
	if cfg.Scoring.StructuralGate {
		validator = artifact.SyntaxValidator{}
	}
	return score.NewScorer(validator, score.Collectors{
		Security:    score.OracleSecurityCollector{Oracle: o},
		Readability: score.ComplexityCollector{},
		Performance: score.OraclePerformanceCollector{Oracle: o},
	}, logger)
}

// newLoopFactory builds a per-artifact loop constructor from the full
// configuration. Each artifact gets a fresh loop; the collaborators
// themselves are stateless and shared.
func newLoopFactory(cfg *config.Config, logger *logging.Logger) (func() (*control.Loop, error), error) {
	mode, err := synth.ParseMode(cfg.Synthesis.Mode)
	if err != nil {
		return nil, err
	}
	goal, err := plan.ParseGoal(cfg.Synthesis.Goal)
	if err != nil {
		return nil, err
	}

	o := newOracle(cfg, logger)

	analyzers, err := newAnalyzers(cfg, o, logger)
	if err != nil {
		return nil, err
	}
	synthesizer, err := synth.New(mode, o, logger)
	if err != nil {
		return nil, err
	}
	exec, err := newExecutor(cfg, o, logger)
	if err != nil {
		return nil, err
	}
	scorer := newScorer(cfg, o, logger)

	return func() (*control.Loop, error) {
		return control.New(control.Options{
			Analyzers:     analyzers,
			Synthesizer:   synthesizer,
			Executor:      exec,
			Scorer:        scorer,
			Goal:          goal,
			Retrospection: cfg.Synthesis.Retrospection,
			Logger:        logger,
		})
	}, nil
}
