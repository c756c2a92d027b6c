package statespace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/daslerpc/mech-checker/pkg/types"
)

// StagePrune names the prune stage in progress reports.
const StagePrune = "prune"

// minChunk is the smallest slice of a level handed to one worker.
const minChunk = 1024

// Stats summarizes a pruning pass.
type Stats struct {
	Began  int `json:"began"`
	Ended  int `json:"ended"`
	Pruned int `json:"pruned"`
}

// Reduction returns the pruned share in percent.
func (s Stats) Reduction() float64 {
	if s.Began == 0 {
		return 0
	}
	return 100 * float64(s.Pruned) / float64(s.Began)
}

// PruneResult holds the reachable subset and the rejected remainder.
type PruneResult struct {
	Reachable *Space
	Rejected  *Space
	Stats     Stats
}

// Prune computes the forward fixpoint from the origin over valid:
// reachable[0] is all of valid[0], and a state at t > 0 survives iff some
// state in reachable[t-1] is adjacent to it. Every level up to the horizon
// is processed. It fails with ErrMissingOrigin when valid[0] lacks the
// origin.
func Prune(ctx context.Context, valid types.Space, advance int, opts ...Option) (*PruneResult, error) {
	o := resolve(opts)
	if !valid.Contains(types.Origin) {
		return nil, types.ErrMissingOrigin
	}
	if o.Strategy != types.StrategyScan && o.Strategy != types.StrategyGenerate {
		return nil, fmt.Errorf("%w: %q", types.ErrStrategyUnknown, o.Strategy)
	}

	horizon := valid.Horizon()
	res := &PruneResult{
		Reachable: NewSpace(horizon),
		Rejected:  NewSpace(horizon),
	}
	for _, s := range valid.NeighborsAt(0) {
		res.Reachable.Add(s)
	}

	for t := 1; t <= horizon; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates := valid.NeighborsAt(t)
		keep, err := reachableMask(ctx, res.Reachable, candidates, advance, o)
		if err != nil {
			return nil, err
		}
		for i, s := range candidates {
			if keep[i] {
				res.Reachable.Add(s)
			} else {
				res.Rejected.Add(s)
			}
		}
		o.Progress(StagePrune, t, horizon)
	}

	for t := 0; t <= horizon; t++ {
		res.Stats.Began += len(valid.NeighborsAt(t))
	}
	res.Stats.Ended = res.Reachable.Len()
	res.Stats.Pruned = res.Stats.Began - res.Stats.Ended
	return res, nil
}

// reachableMask marks which candidates have a predecessor in reach. Chunks
// of the level are checked concurrently; reach is only read.
func reachableMask(ctx context.Context, reach *Space, candidates []types.State, advance int, o Options) ([]bool, error) {
	keep := make([]bool, len(candidates))
	check := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			keep[i] = hasPredecessor(reach, candidates[i], advance, o.Strategy)
		}
	}

	if o.Workers == 1 || len(candidates) <= minChunk {
		check(0, len(candidates))
		return keep, nil
	}

	chunk := max(minChunk, (len(candidates)+o.Workers-1)/o.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			check(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keep, nil
}

func hasPredecessor(reach *Space, s types.State, advance int, strategy string) bool {
	if strategy == types.StrategyScan {
		for _, p := range reach.NeighborsAt(s.T - 1) {
			if types.Adjacent(p, s, advance) {
				return true
			}
		}
		return false
	}
	for _, p := range types.Predecessors(s, advance) {
		if reach.Contains(p) {
			return true
		}
	}
	return false
}
