package statespace

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/daslerpc/mech-checker/internal/validity"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// StageBuild names the build stage in progress reports.
const StageBuild = "build"

// Build enumerates every (v0, v1, h0, h1, t) on the checker's grid and
// returns the legal states bucketed by time index. Work is sharded by v0;
// shards merge in v0 order, so the listing order of each level does not
// depend on the worker count.
func Build(ctx context.Context, c *validity.Checker, opts ...Option) (*Space, error) {
	o := resolve(opts)
	m := c.Model()
	n, horizon := m.MaxIndex(), m.Horizon()

	shards := make([][][]types.State, n+1)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for v0 := 0; v0 <= n; v0++ {
		g.Go(func() error {
			buckets := make([][]types.State, horizon+1)
			for v1 := 0; v1 <= n; v1++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for h0 := 0; h0 <= n; h0++ {
					for h1 := 0; h1 <= n; h1++ {
						for t := 0; t <= horizon; t++ {
							s := types.State{V0: v0, V1: v1, H0: h0, H1: h1, T: t}
							if c.Valid(s) {
								buckets[t] = append(buckets[t], s)
							}
						}
					}
				}
			}
			shards[v0] = buckets
			o.Progress(StageBuild, int(done.Add(1)), n+1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	space := NewSpace(horizon)
	for _, buckets := range shards {
		for _, level := range buckets {
			for _, s := range level {
				space.Add(s)
			}
		}
	}
	return space, nil
}
