package cmd

import (
	"github.com/spf13/cobra"

	"github.com/strata-config/strata/pkg/profile"
	"github.com/strata-config/strata/pkg/schema"
)

var validateSchemaFile string

var validateCmd = &cobra.Command{
	Use:   "validate <profile>",
	Short: "Resolve a profile and validate it against a JSON Schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := profile.NewResolver(cliConfig.SettingsDir(), nil)
		if err != nil {
			return err
		}

		resolved, err := resolver.Resolve(args[0])
		if err != nil {
			return err
		}

		path, err := resolver.ProfilePath(args[0])
		if err != nil {
			return err
		}

		if err := schema.ValidateWithSchemaFile(any(resolved), validateSchemaFile, path); err != nil {
			return err
		}

		cmd.Printf("profile %q is valid\n", args[0])
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaFile, "schema", "", "path to the JSON Schema file to validate against")
	validateCmd.MarkFlagRequired("schema")
	RootCmd.AddCommand(validateCmd)
}
