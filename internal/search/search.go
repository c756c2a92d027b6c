package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/daslerpc/mech-checker/internal/monitoring"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// StageSearch names the search stage in progress reports.
const StageSearch = "search"

// ctxCheckEvery is how many expansions run between context checks.
const ctxCheckEvery = 4096

// Options configures Run.
type Options struct {
	Strategy string
	Workers  int
	Progress monitoring.ProgressFunc
}

// Option mutates Options.
type Option func(*Options)

// WithStrategy selects scan or generate successor lookup.
func WithStrategy(s string) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithWorkers sets how many first-step subtrees are walked concurrently.
// With more than one worker, plans reach the sink in no fixed order.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithProgress installs a callback that counts finished first-step
// subtrees.
func WithProgress(fn monitoring.ProgressFunc) Option {
	return func(o *Options) { o.Progress = fn }
}

// Stats summarizes a search.
type Stats struct {
	Plans    int `json:"plans"`
	Expanded int `json:"expanded"`
}

// Searcher walks one space toward one goal.
type Searcher struct {
	space   types.Space
	goal    int
	advance int
	opts    Options
}

// New returns a searcher over space. goal is the grid index every vehicle
// must reach and advance the grid steps covered by one move.
func New(space types.Space, goal, advance int, opts ...Option) (*Searcher, error) {
	o := Options{Strategy: types.StrategyGenerate, Workers: 1}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Strategy != types.StrategyScan && o.Strategy != types.StrategyGenerate {
		return nil, fmt.Errorf("%w: %q", types.ErrStrategyUnknown, o.Strategy)
	}
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Progress == nil {
		o.Progress = func(string, int, int) {}
	}
	return &Searcher{space: space, goal: goal, advance: advance, opts: o}, nil
}

// Run emits every plan to sink. It fails with ErrMissingOrigin when the
// origin is not in the space, and stops at the first sink error.
func (s *Searcher) Run(ctx context.Context, sink types.PlanSink) (Stats, error) {
	if !s.space.Contains(types.Origin) {
		return Stats{}, types.ErrMissingOrigin
	}
	if types.Origin.IsGoal(s.goal) {
		if err := sink(types.Plan{types.Origin}); err != nil {
			return Stats{}, err
		}
		return Stats{Plans: 1}, nil
	}

	roots := s.successors(types.Origin)
	if s.opts.Workers == 1 || len(roots) < 2 {
		var total Stats
		for i, root := range roots {
			st, err := s.walk(ctx, types.Plan{types.Origin}, []types.State{root}, sink)
			total.Plans += st.Plans
			total.Expanded += st.Expanded
			if err != nil {
				return total, err
			}
			s.opts.Progress(StageSearch, i+1, len(roots))
		}
		return total, nil
	}

	var (
		mu      sync.Mutex
		total   Stats
		sinkErr error
		done    atomic.Int64
	)
	// Once the sink fails no other worker may reach it.
	locked := func(p types.Plan) error {
		mu.Lock()
		defer mu.Unlock()
		if sinkErr != nil {
			return sinkErr
		}
		sinkErr = sink(p)
		return sinkErr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, root := range roots {
		g.Go(func() error {
			st, err := s.walk(gctx, types.Plan{types.Origin}, []types.State{root}, locked)
			mu.Lock()
			total.Plans += st.Plans
			total.Expanded += st.Expanded
			mu.Unlock()
			s.opts.Progress(StageSearch, int(done.Add(1)), len(roots))
			return err
		})
	}
	err := g.Wait()
	return total, err
}

type frame struct {
	children []types.State
	next     int
}

// walk runs the depth-first search below prefix, trying children as the
// first extension.
func (s *Searcher) walk(ctx context.Context, prefix types.Plan, children []types.State, sink types.PlanSink) (Stats, error) {
	var st Stats
	path := prefix.Clone()
	stack := []frame{{children: children}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.children) {
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}
		child := top.children[top.next]
		top.next++
		st.Expanded++
		if st.Expanded%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}

		path = append(path, child)
		if child.IsGoal(s.goal) {
			st.Plans++
			if err := sink(path); err != nil {
				return st, err
			}
			path = path[:len(path)-1]
			continue
		}
		stack = append(stack, frame{children: s.successors(child)})
	}
	return st, ctx.Err()
}

// successors lists the members of the next level adjacent to st.
func (s *Searcher) successors(st types.State) []types.State {
	var out []types.State
	if s.opts.Strategy == types.StrategyScan {
		for _, n := range s.space.NeighborsAt(st.T + 1) {
			if types.Adjacent(st, n, s.advance) {
				out = append(out, n)
			}
		}
		return out
	}
	for _, n := range types.Successors(st, s.advance) {
		if s.space.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
