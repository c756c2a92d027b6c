package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/catalog"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded pipeline runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return err
			}
			cat, err := catalog.Open(dataDir)
			if err != nil {
				return err
			}
			defer cat.Close()

			runs, err := cat.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if runs == nil {
				runs = []catalog.Run{}
			}
			return emit(a, cmd.OutOrStdout(), runs, printRuns)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func printRuns(w io.Writer, runs []catalog.Run) {
	if len(runs) == 0 {
		_, _ = dimColor.Fprintln(w, "no runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		count := r.States
		if r.Stage == catalog.StageSearch {
			count = r.Plans
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Stage,
			r.Status,
			strconv.FormatInt(count, 10),
			r.Output,
		})
	}
	printTable(w, []string{"STARTED", "STAGE", "STATUS", "COUNT", "OUTPUT"}, rows)
}
