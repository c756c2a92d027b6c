package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/daslerpc/mech-checker/internal/catalog"
	"github.com/daslerpc/mech-checker/internal/search"
	"github.com/daslerpc/mech-checker/internal/statespace"
	"github.com/daslerpc/mech-checker/internal/store"
	"github.com/daslerpc/mech-checker/pkg/types"
)

type buildSummary struct {
	RunID  string `json:"run_id"`
	Output string `json:"output"`
	States int    `json:"states"`
	Levels []int  `json:"levels"`
}

type pruneSummary struct {
	RunID     string  `json:"run_id"`
	Input     string  `json:"input,omitempty"`
	Output    string  `json:"output"`
	Rejected  string  `json:"rejected"`
	Began     int     `json:"began"`
	Ended     int     `json:"ended"`
	Pruned    int     `json:"pruned"`
	Reduction float64 `json:"reduction_percent"`
}

type searchSummary struct {
	RunID    string `json:"run_id"`
	Input    string `json:"input,omitempty"`
	Output   string `json:"output"`
	Strategy string `json:"strategy"`
	Plans    int    `json:"plans"`
	Expanded int    `json:"expanded"`
}

func (s *session) stageOpts() []statespace.Option {
	return []statespace.Option{
		statespace.WithWorkers(s.cfg.Workers),
		statespace.WithStrategy(s.cfg.Strategy),
		statespace.WithProgress(s.progress),
	}
}

// build enumerates the valid space and writes it to the data directory.
func (s *session) build(ctx context.Context) (*statespace.Space, buildSummary, error) {
	var (
		valid *statespace.Space
		sum   buildSummary
	)
	sum.Output = store.Path(s.cfg.DataDir, store.PrefixValid, s.model)

	id, err := s.track(ctx, catalog.StageBuild, "", func() (string, catalog.Counts, error) {
		var err error
		valid, err = statespace.Build(ctx, s.checker, s.stageOpts()...)
		if err != nil {
			return "", catalog.Counts{}, err
		}
		if !valid.Contains(types.Origin) {
			return "", catalog.Counts{}, types.ErrMissingOrigin
		}
		valid.Sort()
		if err := store.WriteSpace(sum.Output, s.model, valid); err != nil {
			return "", catalog.Counts{}, err
		}
		return sum.Output, catalog.Counts{States: int64(valid.Len())}, nil
	})
	sum.RunID = id
	if err != nil {
		return nil, sum, err
	}
	sum.States = valid.Len()
	sum.Levels = valid.LevelSizes()
	s.log.Info("state space built", slog.Int("states", sum.States), slog.String("output", sum.Output))
	return valid, sum, nil
}

// loadValid reads the valid space named by input or found upstream.
func (s *session) loadValid(ctx context.Context, input string) (*statespace.Space, string, error) {
	path, err := s.upstream(ctx, input, catalog.StageBuild, store.Path(s.cfg.DataDir, store.PrefixValid, s.model))
	if err != nil {
		return nil, "", err
	}
	space, err := store.LoadSpace(path, s.model)
	return space, path, err
}

// loadPruned reads the reachable space named by input or found upstream.
func (s *session) loadPruned(ctx context.Context, input string) (*statespace.Space, string, error) {
	path, err := s.upstream(ctx, input, catalog.StagePrune, store.Path(s.cfg.DataDir, store.PrefixPruned, s.model))
	if err != nil {
		return nil, "", err
	}
	space, err := store.LoadSpace(path, s.model)
	return space, path, err
}

// prune keeps the states reachable from the origin and writes both the
// reachable and the rejected states.
func (s *session) prune(ctx context.Context, valid *statespace.Space, input string) (*statespace.Space, pruneSummary, error) {
	var (
		res *statespace.PruneResult
		sum = pruneSummary{Input: input}
	)
	sum.Output = store.Path(s.cfg.DataDir, store.PrefixPruned, s.model)
	sum.Rejected = store.Path(s.cfg.DataDir, store.PrefixRejected, s.model)

	id, err := s.track(ctx, catalog.StagePrune, input, func() (string, catalog.Counts, error) {
		var err error
		res, err = statespace.Prune(ctx, valid, s.model.Advance(), s.stageOpts()...)
		if err != nil {
			return "", catalog.Counts{}, err
		}
		res.Reachable.Sort()
		res.Rejected.Sort()
		if err := store.WriteSpaces(s.model,
			store.SpaceFile{Path: sum.Output, Space: res.Reachable},
			store.SpaceFile{Path: sum.Rejected, Space: res.Rejected}); err != nil {
			return "", catalog.Counts{}, err
		}
		return sum.Output, catalog.Counts{
			States: int64(res.Stats.Ended),
			Pruned: int64(res.Stats.Pruned),
		}, nil
	})
	sum.RunID = id
	if err != nil {
		return nil, sum, err
	}
	sum.Began = res.Stats.Began
	sum.Ended = res.Stats.Ended
	sum.Pruned = res.Stats.Pruned
	sum.Reduction = res.Stats.Reduction()
	s.log.Info("state space pruned",
		slog.Int("began", sum.Began),
		slog.Int("ended", sum.Ended),
		slog.Int("pruned", sum.Pruned))
	return res.Reachable, sum, nil
}

// search writes every plan through space to the data directory.
func (s *session) search(ctx context.Context, space types.Space, input string) (searchSummary, error) {
	sum := searchSummary{
		Input:    input,
		Output:   store.Path(s.cfg.DataDir, store.PrefixPlans, s.model),
		Strategy: s.cfg.Strategy,
	}

	searcher, err := search.New(space, s.model.GoalIndex(), s.model.Advance(),
		search.WithStrategy(s.cfg.Strategy),
		search.WithWorkers(s.cfg.Workers),
		search.WithProgress(s.progress))
	if err != nil {
		return sum, err
	}

	var stats search.Stats
	id, err := s.track(ctx, catalog.StageSearch, input, func() (string, catalog.Counts, error) {
		w, err := store.CreatePlans(sum.Output, s.model)
		if err != nil {
			return "", catalog.Counts{}, err
		}
		sink := func(p types.Plan) error {
			s.log.Debug("solution found",
				slog.Int("plan", w.Count()+1),
				slog.Int("steps", len(p)-1),
				slog.Int("holds", p.Holds()))
			return w.Write(p)
		}
		stats, err = searcher.Run(ctx, sink)
		if err != nil {
			w.Abort()
			return "", catalog.Counts{}, err
		}
		if err := w.Commit(); err != nil {
			return "", catalog.Counts{}, err
		}
		return sum.Output, catalog.Counts{Plans: int64(stats.Plans)}, nil
	})
	sum.RunID = id
	if err != nil {
		return sum, err
	}
	sum.Plans = stats.Plans
	sum.Expanded = stats.Expanded
	s.log.Info("search finished", slog.Int("plans", sum.Plans), slog.String("output", filepath.Base(sum.Output)))
	return sum, nil
}
