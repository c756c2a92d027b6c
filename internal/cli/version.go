package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/pkg/mechcheck"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mechcheck version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mechcheck v%s\n", mechcheck.Version)
			_, _ = dimColor.Fprintf(cmd.OutOrStdout(), "module: %s\n", mechcheck.ModulePath)
			return nil
		},
	}
}
