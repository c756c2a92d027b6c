package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop states that cannot be reached from the origin",
		Long: `Prune loads a valid state space and keeps only the states reachable from
the origin by a sequence of legal one-step moves. Reachable states go to
prunedStateSpaces_<params>.dat and the rest to rejectedStates_<params>.dat.

By default the input is the newest build output for the active parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			valid, path, err := s.loadValid(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, sum, err := s.prune(cmd.Context(), valid, path)
			if err != nil {
				return err
			}
			return emit(a, cmd.OutOrStdout(), sum, printPrune)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "valid state space file (default: newest build output)")
	return cmd
}

func printPrune(w io.Writer, sum pruneSummary) {
	printSection(w, "Prune")
	printLabelValue(w, "began with", sum.Began)
	printLabelValue(w, "ended with", sum.Ended)
	printLabelValue(w, "pruned", sum.Pruned)
	printLabelValue(w, "reduction", fmt.Sprintf("%.2f%%", sum.Reduction))
	printLabelValue(w, "output", sum.Output)
	printLabelValue(w, "rejected", sum.Rejected)
}
