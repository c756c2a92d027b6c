package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Enumerate every legal state on the grid",
		Long: `Build checks every combination of vehicle positions and time indices
against the collision, guard, speed, and delay rules and writes the legal
states to validStateSpaces_<params>.dat in the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			_, sum, err := s.build(cmd.Context())
			if err != nil {
				return err
			}
			return emit(a, cmd.OutOrStdout(), sum, printBuild)
		},
	}
}

func printBuild(w io.Writer, sum buildSummary) {
	printSection(w, "Build")
	printLabelValue(w, "valid states", sum.States)
	printLabelValue(w, "time levels", len(sum.Levels))
	printLabelValue(w, "output", sum.Output)
}

// emit writes sum as JSON in --json mode and through human otherwise.
func emit[T any](a *app, w io.Writer, sum T, human func(io.Writer, T)) error {
	if a.jsonMode {
		return writeJSON(w, sum)
	}
	human(w, sum)
	return nil
}
