package ecm

// Parallel round dispatch for the ECM engines. Spec section 5 permits
// parallelism as an optimization ("per-round seeds are independent") as
// long as the contract - return the first non-trivial factor found - is
// preserved; Options.Parallel opts into running several curve attempts
// concurrently via errgroup, first-factor-wins, instead of one curve at a
// time. The default (Parallel <= 1) stays sequential and deterministic
// given a fixed Seed.

import (
	"context"
	"math/big"
	"math/rand"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// roundFunc runs one curve-sampling attempt (sample, Stage 1, Stage 2)
// and reports whether it produced a factor.
type roundFunc func(n *big.Int, rng *rand.Rand) (*big.Int, bool)

// runRounds dispatches up to opts.Rounds calls to round, sequentially or,
// when opts.Parallel > 1, fanned out across that many goroutines.
func runRounds(n *big.Int, opts Options, round roundFunc) (*big.Int, bool) {
	if opts.Parallel <= 1 {
		rng := opts.newRand()
		for i := 0; i < opts.Rounds; i++ {
			if f, ok := round(n, rng); ok {
				return f, true
			}
		}
		return nil, false
	}
	return runRoundsParallel(n, opts, round)
}

// runRoundsParallel runs round concurrently across opts.Parallel workers,
// each with its own PRNG (math/rand.Rand is not safe for concurrent use),
// sharing a single budget of opts.Rounds total attempts via an atomic
// counter. The first worker to find a factor cancels the shared context;
// the rest notice at their next attempt boundary and stop.
func runRoundsParallel(n *big.Int, opts Options, round roundFunc) (*big.Int, bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var (
		mu        sync.Mutex
		result    *big.Int
		remaining = int64(opts.Rounds)
	)

	base := opts.newRand()
	for w := 0; w < opts.Parallel; w++ {
		workerSeed := base.Int63()
		g.Go(func() error {
			rng := rand.New(rand.NewSource(workerSeed))
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if atomic.AddInt64(&remaining, -1) < 0 {
					return nil
				}
				f, ok := round(n, rng)
				if !ok {
					continue
				}
				mu.Lock()
				if result == nil {
					result = f
				}
				mu.Unlock()
				cancel()
				return nil
			}
		})
	}
	_ = g.Wait()

	if result == nil {
		return nil, false
	}
	return result, true
}
