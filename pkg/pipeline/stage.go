// Package pipeline provides the stage infrastructure and stage I/O types
// shared by the basiskit stages and the orchestrator.
package pipeline

import (
	"context"
)

// Stage is one step of processing a container: inspect, transcode or
// export.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// Run executes s unless ctx is already done, so a cancelled batch stops
// between stages without entering the next one.
func Run[In, Out any](ctx context.Context, s Stage[In, Out], input In) (Out, error) {
	if err := ctx.Err(); err != nil {
		var zero Out
		return zero, err
	}
	return s.Execute(ctx, input)
}
