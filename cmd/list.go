package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-config/strata/pkg/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discoverable settings profiles",
	Long: `Walk the settings directory and print every profile name, one per
line. Paths matching an exclusion glob and schema files are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []store.Option{}
		if len(cliConfig.Exclude) > 0 {
			opts = append(opts, store.WithExcludeGlobs(cliConfig.Exclude...))
		}

		s, err := store.NewSettings(cliConfig.SettingsDir(), nil, opts...)
		if err != nil {
			return err
		}

		names, err := s.Discover()
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := os.Stdout.WriteString(name + "\n"); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}
