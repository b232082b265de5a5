package conduct

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner executes independent workflows concurrently within one process,
// with an optional concurrency limit. Each workflow still runs under the
// engine's own scheduling; the Runner only bounds how many runs are in
// flight at once.
//
// Typical usage:
//
//	runner := conduct.NewRunner(4)
//	for _, wf := range flows {
//	    runner.Go(ctx, wf)
//	}
//	if err := runner.Wait(); err != nil {
//	    log.Fatal(err)
//	}
type Runner struct {
	group *errgroup.Group
}

// NewRunner creates a Runner. limit bounds the number of concurrently
// running workflows; limit <= 0 means no bound.
func NewRunner(limit int) *Runner {
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &Runner{group: g}
}

// Go schedules wf to run. It blocks only while the concurrency limit is
// saturated. Failures are recorded on each workflow as usual; Wait
// additionally returns the first one.
func (r *Runner) Go(ctx context.Context, wf *Workflow) {
	r.group.Go(func() error {
		return Start(ctx, wf)
	})
}

// Wait blocks until every scheduled workflow has reached a terminal
// state and returns the first failure, if any.
func (r *Runner) Wait() error {
	return r.group.Wait()
}
