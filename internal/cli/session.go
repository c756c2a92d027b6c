package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/catalog"
	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/internal/monitoring"
	"github.com/daslerpc/mech-checker/internal/validity"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// session is everything a pipeline command needs: the validated
// configuration, the grid model and checker built from it, and the open run
// catalog.
type session struct {
	cfg      types.Config
	model    *grid.Model
	checker  *validity.Checker
	cat      *catalog.Catalog
	log      *slog.Logger
	progress monitoring.ProgressFunc
}

// openSession validates the configuration and opens the catalog. The
// caller must Close the session.
func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := configFromViper(a.v, dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := grid.New(cfg.Params)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(dataDir)
	if err != nil {
		return nil, err
	}

	log := monitoring.Component(cmd.Name())
	log.Debug("configuration",
		slog.String("data_dir", dataDir),
		slog.String("fingerprint", m.Fingerprint()),
		slog.Int("grid_max", m.MaxIndex()),
		slog.Int("time_max", m.Horizon()),
		slog.Int("goal_index", m.GoalIndex()))

	return &session{
		cfg:      cfg,
		model:    m,
		checker:  validity.New(m),
		cat:      cat,
		log:      log,
		progress: monitoring.NewProgress(log).Func(),
	}, nil
}

// Close releases the catalog.
func (s *session) Close() error {
	return s.cat.Close()
}

// paramsJSON renders the normalized parameters for the catalog.
func (s *session) paramsJSON() string {
	raw, err := json.Marshal(s.model.Params())
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// track wraps one stage run in catalog bookkeeping: the run is recorded as
// running, then finished with the returned output and counts or failed with
// the returned error.
func (s *session) track(ctx context.Context, stage, input string, fn func() (string, catalog.Counts, error)) (string, error) {
	id, err := s.cat.Begin(ctx, stage, s.model.Fingerprint(), s.paramsJSON(), input)
	if err != nil {
		return "", err
	}
	output, counts, runErr := fn()
	// Bookkeeping must land even when ctx was cancelled.
	bg := context.WithoutCancel(ctx)
	if runErr != nil {
		if err := s.cat.Fail(bg, id, runErr); err != nil {
			s.log.Warn("recording failed run", slog.String("run", id), slog.Any("error", err))
		}
		return id, runErr
	}
	if err := s.cat.Finish(bg, id, output, counts); err != nil {
		return id, err
	}
	return id, nil
}

// upstream resolves the input artifact for a stage: an explicit path wins,
// then the newest successful run of the producing stage under the same
// parameters, then the conventional file name in the data directory. A file
// the catalog knows was written under other parameters is refused.
func (s *session) upstream(ctx context.Context, explicit, stage, fallback string) (string, error) {
	if explicit != "" {
		path, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", explicit, err)
		}
		return path, s.checkProvenance(ctx, path)
	}
	out, err := s.cat.LatestOutput(ctx, stage, s.model.Fingerprint())
	if err == nil {
		// A later run under other parameters may have rewritten the file.
		return out, s.checkProvenance(ctx, out)
	}
	if !errors.Is(err, catalog.ErrNoRun) {
		return "", err
	}
	if _, statErr := os.Stat(fallback); statErr == nil {
		return fallback, s.checkProvenance(ctx, fallback)
	}
	return "", fmt.Errorf("no %s output for these parameters; run `mechcheck %s` first", stage, stage)
}

// checkProvenance fails with ErrConfigMismatch when the newest recorded run
// that wrote path used a different parameter fingerprint. File names carry
// only goal, resolution, horizon and speed, so geometry and delay changes
// are caught here. Files with no recorded run are accepted.
func (s *session) checkProvenance(ctx context.Context, path string) error {
	fp, err := s.cat.OutputFingerprint(ctx, path)
	if errors.Is(err, catalog.ErrNoRun) {
		s.log.Debug("input has no recorded run", slog.String("path", path))
		return nil
	}
	if err != nil {
		return err
	}
	if fp != s.model.Fingerprint() {
		return fmt.Errorf("%w: %s was written with %s, active parameters are %s",
			types.ErrConfigMismatch, filepath.Base(path), fp, s.model.Fingerprint())
	}
	return nil
}
