package dlog

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// Result is the outcome of solving one element of a batch. Failed elements
// carry their own error without affecting the rest of the batch.
type Result struct {
	Count uint64
	Err   error
}

// SolveBatch solves the discrete logarithm of every target in parallel,
// bounded by the number of CPUs. The returned slice keeps the order of the
// input targets.
func (t *Table) SolveBatch(targets []ecc.Point, maxLog uint64) []Result {
	results := make([]Result, len(targets))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			results[i].Count, results[i].Err = t.Solve(target, maxLog)
			return nil
		})
	}
	_ = g.Wait() // failures are reported per element
	return results
}
