package control

import (
	"context"
	"fmt"

	"maestro/internal/analyzer"
	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/executor"
	"maestro/internal/logging"
	"maestro/internal/plan"
	"maestro/internal/score"
	"maestro/internal/suggestion"
	"maestro/internal/synth"
)

// Options configures a Loop. Every collaborator is passed explicitly; the
// loop never reaches for ambient configuration.
type Options struct {
	Analyzers   []analyzer.Analyzer
	Synthesizer synth.Synthesizer
	Executor    executor.Executor
	Scorer      *score.Scorer

	// Goal is the synthesis goal for every attempt.
	Goal plan.Goal

	// Retrospection enables the single feedback-driven retry after a
	// scoring failure.
	Retrospection bool

	Logger *logging.Logger
}

// Loop is the per-artifact pipeline driver.
type Loop struct {
	opts   Options
	logger *logging.Logger
}

// New creates a Loop. It validates that the required collaborators are
// present.
func New(opts Options) (*Loop, error) {
	if opts.Synthesizer == nil {
		return nil, errors.NewValidationError("control loop requires a synthesizer").WithField("synthesizer")
	}
	if opts.Executor == nil {
		return nil, errors.NewValidationError("control loop requires an executor").WithField("executor")
	}
	if opts.Scorer == nil {
		return nil, errors.NewValidationError("control loop requires a scorer").WithField("scorer")
	}
	if opts.Goal == "" {
		opts.Goal = plan.GoalBalance
	}
	if !opts.Goal.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown synthesis goal %q", opts.Goal)).
			WithField("goal").WithValue(string(opts.Goal))
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	return &Loop{opts: opts, logger: opts.Logger}, nil
}

// Run drives one artifact to a terminal status. A returned error means the
// run could not reach a terminal at all: a precondition violation from an
// upstream collaborator or a scorer infrastructure failure. All six
// terminal outcomes, failures included, return a Result and a nil error.
func (l *Loop) Run(ctx context.Context, art artifact.Artifact) (*Result, error) {
	logger := l.logger.WithArtifact(art.Name)
	run := &RunState{State: StateInit}
	result := &Result{Final: art}

	run.State = StateCollect
	logger.Info("collecting suggestions", "analyzers", len(l.opts.Analyzers))

	suggestions, outcomes := analyzer.Collect(ctx, l.opts.Analyzers, art)
	result.Outcomes = outcomes

	if len(suggestions) == 0 {
		return l.finishNoOp(ctx, art, result, logger)
	}

	// A malformed union is a bug in an analyzer, not a pipeline outcome.
	if err := suggestion.ValidateSet(suggestions); err != nil {
		return nil, err
	}

	for {
		attemptLogger := logger.WithAttempt(run.Attempt)

		run.State = StateSynthesize
		p, err := l.opts.Synthesizer.Synthesize(ctx, synth.Request{
			Artifact:    art,
			Suggestions: suggestions,
			Goal:        l.opts.Goal,
			Feedback:    run.Feedback,
		})
		result.Attempts = run.Attempt + 1
		if err != nil {
			// A SynthesisError covers every absent, malformed, or invalid
			// oracle plan, including plan-validation rejections whose cause
			// chain reaches ErrInvalidInput. Those are the SYNTH_FAILURE
			// terminal; only a bad suggestion set from upstream aborts the
			// run as a precondition violation.
			var synthErr *errors.SynthesisError
			if !errors.As(err, &synthErr) && errors.Is(err, errors.ErrInvalidInput) {
				return nil, err
			}
			attemptLogger.Error("synthesis failed", "error", err.Error())
			return l.finish(result, TerminalSynthFailure, fmt.Sprintf("synthesis failed: %v", err), logger), nil
		}
		result.Plans = append(result.Plans, p)
		attemptLogger.Info("plan synthesized", "plan_id", p.ID, "steps", p.StepCount())

		run.State = StateExecute
		candidate, err := l.opts.Executor.Apply(ctx, art, p)
		if err != nil {
			attemptLogger.Error("execution failed", "error", err.Error())
			return l.finish(result, TerminalExecFailure, fmt.Sprintf("execution failed: %v", err), logger), nil
		}

		run.State = StateScore
		report, err := l.opts.Scorer.Evaluate(ctx, art, candidate)
		if err != nil {
			return nil, err
		}
		report.Attempt = run.Attempt
		result.Reports = append(result.Reports, report)

		if report.Passed() {
			result.Final = candidate
			status := TerminalSuccess
			if run.Attempt > 0 {
				status = TerminalSuccessAfterRetry
			}
			return l.finish(result, status, report.Rationale, logger), nil
		}

		run.State = StateRetryDecision
		if !l.retryAvailable(run) {
			return l.finish(result, TerminalFinalFailure, report.Rationale, logger), nil
		}

		run.Feedback = buildFeedback(report)
		run.Attempt++
		attemptLogger.Info("retrying with feedback",
			"structural_defect", report.StructuralDefect,
			"prior_total", report.Total)
	}
}

// retryAvailable applies the retry policy: retrospection must be enabled,
// the hard one-retry cap must not be spent, and rule-based synthesis never
// retries since an identical input would reproduce the identical plan.
func (l *Loop) retryAvailable(run *RunState) bool {
	if !l.opts.Retrospection {
		return false
	}
	if run.Attempt >= 1 {
		return false
	}
	return l.opts.Synthesizer.Mode() != synth.ModeRuleBased
}

// finishNoOp accepts the artifact unchanged, still scoring it once so the
// report shows where the untouched artifact stands.
func (l *Loop) finishNoOp(ctx context.Context, art artifact.Artifact, result *Result, logger *logging.Logger) (*Result, error) {
	report, err := l.opts.Scorer.Evaluate(ctx, art, art)
	if err != nil {
		logger.Warn("baseline scoring failed during no-op", "error", err.Error())
	} else {
		result.Reports = append(result.Reports, report)
	}
	return l.finish(result, TerminalNoOp, "no analyzer produced suggestions; artifact accepted unchanged", logger), nil
}

func (l *Loop) finish(result *Result, status TerminalStatus, rationale string, logger *logging.Logger) *Result {
	result.TerminalStatus = status
	result.Rationale = rationale
	logger.Info("run finished",
		"terminal", status.String(),
		"attempts", result.Attempts,
		"rationale", rationale)
	return result
}

// buildFeedback derives the retry feedback from the prior failure's
// category. A structural defect demands to be fixed before anything else;
// a quality shortfall reports the numeric total and the weakest dimensions.
func buildFeedback(report score.QualityReport) string {
	if report.StructuralDefect {
		return fmt.Sprintf("The previous candidate was rejected before scoring: %s. "+
			"The artifact must be structurally valid; fix this defect before making any other change.",
			report.Rationale)
	}
	return fmt.Sprintf("The previous candidate scored %d of 100 (security %d, readability %d, performance %d), "+
		"below the passing threshold of %d. Produce a plan whose result improves the weakest dimensions "+
		"without regressing the others.",
		report.Total, report.Security, report.Readability, report.Performance, score.Threshold)
}
