package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/catalog"
	"github.com/daslerpc/mech-checker/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file, data directory, and run catalog",
		Long: `Create the configuration directory with a default config.yaml describing
the reference crossing, then create the data directory and its run catalog.
Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			configPath := paths.ConfigFile(a.configDir)
			wrote, err := writeConfigIfMissing(configPath, a.dataDirFlag)
			if err != nil {
				return err
			}

			cat, err := catalog.Open(dataDir)
			if err != nil {
				return fmt.Errorf("initialize catalog: %w", err)
			}
			if err := cat.Close(); err != nil {
				return fmt.Errorf("close catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return writeJSON(out, map[string]any{
					"config":         configPath,
					"config_written": wrote,
					"data":           dataDir,
				})
			}
			printSuccess(out, "mechcheck initialized")
			printLabelValue(out, "config", configPath)
			printLabelValue(out, "data", dataDir)
			return nil
		},
	}
}
