package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/report"
	"github.com/daslerpc/mech-checker/internal/store"
)

func newPlotCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Chart valid, reachable, and rejected states per time index",
		Long: `Plot loads the newest build and prune outputs for the active parameters
and draws the number of states at each time index to an image. The format
follows the output extension (png, svg, pdf).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			valid, _, err := s.loadValid(ctx, "")
			if err != nil {
				return err
			}
			series := []report.Series{{Label: "valid", Counts: valid.LevelSizes()}}

			reach, prunedPath, err := s.loadPruned(ctx, "")
			if err == nil {
				series = append(series, report.Series{Label: "reachable", Counts: reach.LevelSizes()})
				rejectedPath := filepath.Join(filepath.Dir(prunedPath), store.FileName(store.PrefixRejected, s.model))
				if rejected, err := store.LoadSpace(rejectedPath, s.model); err == nil {
					series = append(series, report.Series{Label: "rejected", Counts: rejected.LevelSizes()})
				}
			} else {
				s.log.Warn("plotting without pruned space", "error", err)
			}

			if out == "" {
				out = filepath.Join(s.cfg.DataDir, "levels.png")
			}
			p := s.model.Params()
			title := fmt.Sprintf("States per time index (resolution %s, delay %s)", p.Resolution, p.AllowedDelay)
			if err := report.LevelPlot(out, title, series...); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonMode {
				return writeJSON(w, map[string]any{"output": out, "series": len(series)})
			}
			printSuccess(w, "plot written")
			printLabelValue(w, "output", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "image path (default: <data-dir>/levels.png)")
	return cmd
}
