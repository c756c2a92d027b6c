package cli

import (
	"io"

	"github.com/spf13/cobra"
)

type runSummary struct {
	Build  buildSummary  `json:"build"`
	Prune  pruneSummary  `json:"prune"`
	Search searchSummary `json:"search"`
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build, prune, and search in one pass",
		Long: `Run executes the whole pipeline for the active parameters, handing each
stage's result to the next in memory. Every stage still writes its file and
catalog entry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			var sum runSummary
			valid, bs, err := s.build(ctx)
			if err != nil {
				return err
			}
			sum.Build = bs

			reach, ps, err := s.prune(ctx, valid, bs.Output)
			if err != nil {
				return err
			}
			sum.Prune = ps

			if sum.Search, err = s.search(ctx, reach, ps.Output); err != nil {
				return err
			}
			return emit(a, cmd.OutOrStdout(), sum, printRun)
		},
	}
}

func printRun(w io.Writer, sum runSummary) {
	printBuild(w, sum.Build)
	printPrune(w, sum.Prune)
	printSearch(w, sum.Search)
}
