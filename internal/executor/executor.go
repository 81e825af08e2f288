// Package executor applies an execution plan to an artifact, producing a
// candidate. The original artifact is never mutated.
package executor

import (
	"context"

	"maestro/internal/artifact"
	"maestro/internal/plan"
)

// Executor turns a plan into a candidate artifact. A failure means no
// candidate could be produced; it terminates the attempt.
type Executor interface {
	Apply(ctx context.Context, a artifact.Artifact, p *plan.Plan) (artifact.Artifact, error)
}
