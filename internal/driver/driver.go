package driver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"maestro/internal/artifact"
	"maestro/internal/control"
	"maestro/internal/errors"
	"maestro/internal/logging"
	"maestro/internal/report"
)

// Event reports per-artifact progress to an observer (e.g. the TUI).
type Event struct {
	Artifact string
	Done     bool
	Result   *control.Result
	Err      error
}

// Driver runs the improvement loop over many artifacts with bounded
// parallelism. Each artifact gets its own loop instance so per-run state
// never leaks between artifacts.
type Driver struct {
	newLoop  func() (*control.Loop, error)
	parallel int
	logger   *logging.Logger
	onEvent  func(Event)
}

// Option configures a Driver.
type Option func(*Driver)

// WithParallelism bounds concurrent artifact runs. Values below 1 are
// coerced to 1.
func WithParallelism(n int) Option {
	return func(d *Driver) {
		if n < 1 {
			n = 1
		}
		d.parallel = n
	}
}

// WithObserver registers a callback invoked as artifacts start and
// finish. Callbacks may arrive from multiple goroutines.
func WithObserver(fn func(Event)) Option {
	return func(d *Driver) { d.onEvent = fn }
}

// New returns a Driver that builds a fresh loop per artifact via newLoop.
func New(newLoop func() (*control.Loop, error), logger *logging.Logger, opts ...Option) (*Driver, error) {
	if newLoop == nil {
		return nil, errors.NewValidationError("loop factory is required").WithField("newLoop")
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	d := &Driver{newLoop: newLoop, parallel: 1, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run improves every artifact and assembles a RunReport. Infrastructure
// failures on one artifact cancel the remaining ones; terminal failures
// (low scores, synthesis failures) are recorded in the report and do not
// stop the run.
func (d *Driver) Run(ctx context.Context, runID, goal, mode string, artifacts []artifact.Artifact) (*report.RunReport, error) {
	rep := &report.RunReport{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Goal:      goal,
		Mode:      mode,
		Artifacts: make([]report.ArtifactResult, len(artifacts)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallel)

	var mu sync.Mutex
	for i, art := range artifacts {
		g.Go(func() error {
			d.emit(Event{Artifact: art.Name})
			d.logger.Info("artifact run started", "artifact", art.Name)

			loop, err := d.newLoop()
			if err != nil {
				d.emit(Event{Artifact: art.Name, Done: true, Err: err})
				return errors.Wrap(err, "building loop for "+art.Name)
			}

			res, err := loop.Run(ctx, art)
			if err != nil {
				d.emit(Event{Artifact: art.Name, Done: true, Err: err})
				return errors.Wrap(err, "improving "+art.Name)
			}

			d.logger.Info("artifact run finished",
				"artifact", art.Name,
				"terminal", res.TerminalStatus,
				"attempts", res.Attempts)
			d.emit(Event{Artifact: art.Name, Done: true, Result: res})

			mu.Lock()
			rep.Artifacts[i] = report.ArtifactResult{Artifact: art.Name, Result: res}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep.FinishedAt = time.Now().UTC()
	return rep, nil
}

func (d *Driver) emit(ev Event) {
	if d.onEvent != nil {
		d.onEvent(ev)
	}
}
