package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job produces the i-th output of a batch.
type Job[D any] func(ctx context.Context, i int) (*Output[D], error)

// Ensemble runs independent jobs concurrently, at most Workers at a time.
type Ensemble[D any] struct {
	Workers int
}

// NewEnsemble limits the batch to workers goroutines; zero or less means one
// per CPU.
func NewEnsemble[D any](workers int) *Ensemble[D] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble[D]{Workers: workers}
}

// Run calls job for every index in [0, n) and returns outputs in index order.
// The first failure cancels the jobs that have not finished yet; outputs of
// the jobs that did finish are still returned.
func (e *Ensemble[D]) Run(ctx context.Context, n int, job Job[D]) ([]*Output[D], error) {
	outputs := make([]*Output[D], n)
	g, ctx := errgroup.WithContext(ctx)
	if e.Workers > 0 {
		g.SetLimit(e.Workers)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			out, err := job(ctx, i)
			outputs[i] = out
			return err
		})
	}
	return outputs, g.Wait()
}

// RunInputs runs every input on a fresh simulator from factory. Controllers
// carry state, so simulators are never shared between runs.
func (e *Ensemble[D]) RunInputs(ctx context.Context, factory func() *Simulator[D], inputs []Input) ([]*Output[D], error) {
	return e.Run(ctx, len(inputs), func(ctx context.Context, i int) (*Output[D], error) {
		return factory().Run(ctx, inputs[i])
	})
}
