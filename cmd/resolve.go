package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-config/strata/pkg/document"
	"github.com/strata-config/strata/pkg/profile"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <profile>",
	Short: "Resolve a profile into its effective document",
	Long: `Follow the profile's $extends chain, merge it base-to-child, splice
$include fragments, and print the flattened document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := profile.NewResolver(cliConfig.SettingsDir(), nil)
		if err != nil {
			return err
		}

		resolved, err := resolver.Resolve(args[0])
		if err != nil {
			return err
		}

		data, err := document.ToJSON(resolved)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)
}
