// Package cli implements the mechcheck command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daslerpc/mech-checker/internal/monitoring"
	"github.com/daslerpc/mech-checker/internal/paths"
	"github.com/daslerpc/mech-checker/pkg/mechcheck"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitUserError   = 1
	exitSysError    = 2
	exitInterrupted = 130
)

// app holds global flag values and the loaded configuration for one
// invocation of the root command.
type app struct {
	configDirFlag string
	dataDirFlag   string
	jsonMode      bool
	verbose       bool
	logJSON       bool

	configDir string
	v         *viper.Viper
}

// NewRootCmd creates the top-level "mechcheck" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mechcheck",
		Short: "Exhaustively verify vehicle crossings at a two-lane intersection",
		Long: `mechcheck enumerates every legal configuration of two vertical and two
horizontal vehicles crossing a square intersection on a discrete grid, prunes
the configurations that cannot be reached from the start, and lists every
collision-free motion plan that brings all four vehicles to the goal.`,
		Version:       mechcheck.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			monitoring.SetLogger(monitoring.NewLogger(cmd.ErrOrStderr(), a.verbose, a.logJSON))

			configDir, err := paths.ResolveConfigDir(a.configDirFlag)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			v, err := loadConfig(configDir, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.configDir = configDir
			a.v = v
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDirFlag, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.dataDirFlag, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")
	addParamFlags(pf)

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newBuildCmd(a),
		newPruneCmd(a),
		newSearchCmd(a),
		newRunCmd(a),
		newVerifyCmd(a),
		newCheckCmd(a),
		newRunsCmd(a),
		newPlotCmd(a),
	)
	return root
}

// Execute runs the root command with args and returns the process exit
// code. Errors are printed to stderr.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mechcheck:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps an error to an exit code: bad input is a user error, a
// broken model or failing file system is a system error.
func exitCode(err error) int {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, types.ErrMissingOrigin), errors.As(err, &pathErr):
		return exitSysError
	default:
		return exitUserError
	}
}

// resolveDataDir returns the data directory: --data-dir flag >
// MECHCHECK_DATA_DIR env > config.yaml data_dir > $(CWD)/mechcheck-data.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.dataDirFlag, a.v.GetString(cfgKeyDataDir))
}
