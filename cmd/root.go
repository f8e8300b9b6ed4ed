// Package cmd implements the strata CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/strata-config/strata/pkg/config"
	log "github.com/strata-config/strata/pkg/logger"
)

var (
	cfgFile   string
	basePath  string
	logsLevel string

	// cliConfig is loaded once in the persistent pre-run and shared by all
	// subcommands.
	cliConfig config.Configuration
)

// RootCmd is the top-level strata command.
var RootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Compose, diff and validate layered JSON configuration profiles",
	Long: `Strata resolves multi-file configuration profiles built from $extends
inheritance and $include fragments into a single effective document,
validates the result, and computes the minimal child-profile patch for
round-trip editing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cliConfig, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if basePath != "" {
			cliConfig.BasePath = basePath
		}
		if logsLevel != "" {
			cliConfig.Logs.Level = logsLevel
		}

		level, err := log.ParseLevel(cliConfig.Logs.Level)
		if err != nil {
			return err
		}
		log.Default().SetLevel(level)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the strata config file")
	RootCmd.PersistentFlags().StringVar(&basePath, "base-path", "", "root directory for the settings/state/output categories")
	RootCmd.PersistentFlags().StringVar(&logsLevel, "logs-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the CLI.
func Execute() error {
	return RootCmd.Execute()
}
