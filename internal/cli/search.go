package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/statespace"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		input string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List every motion plan from the origin to the goal",
		Long: `Search walks the pruned state space depth first and writes every plan
that takes all four vehicles from the origin to the goal to
motionPlans_<params>.dat, one state per line with a blank line between plans.

With --raw the unpruned valid space is searched instead. Both spaces yield the
same plans; pruning only removes dead weight.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				space *statespace.Space
				path  string
			)
			if raw {
				space, path, err = s.loadValid(cmd.Context(), input)
			} else {
				space, path, err = s.loadPruned(cmd.Context(), input)
			}
			if err != nil {
				return err
			}
			sum, err := s.search(cmd.Context(), space, path)
			if err != nil {
				return err
			}
			return emit(a, cmd.OutOrStdout(), sum, printSearch)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "state space file (default: newest prune output)")
	cmd.Flags().BoolVar(&raw, "raw", false, "search the unpruned valid space")
	return cmd
}

func printSearch(w io.Writer, sum searchSummary) {
	printSection(w, "Search")
	printLabelValue(w, "strategy", sum.Strategy)
	printLabelValue(w, "plans found", sum.Plans)
	printLabelValue(w, "states expanded", sum.Expanded)
	printLabelValue(w, "output", sum.Output)
}
