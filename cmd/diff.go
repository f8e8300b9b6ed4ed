package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-config/strata/pkg/diff"
	"github.com/strata-config/strata/pkg/document"
	"github.com/strata-config/strata/pkg/profile"
)

var diffWrapExtends bool

var diffCmd = &cobra.Command{
	Use:   "diff <base-profile> <edited-file>",
	Short: "Compute the sparse patch between a resolved profile and an edited document",
	Long: `Resolve the base profile, diff the edited document against it, and print
the minimal patch. With --extends the patch is wrapped into a directly
savable child profile.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := profile.NewResolver(cliConfig.SettingsDir(), nil)
		if err != nil {
			return err
		}

		base, err := resolver.Resolve(args[0])
		if err != nil {
			return err
		}

		edited, err := document.ReadObjectFile(args[1])
		if err != nil {
			return err
		}

		patch := diff.Objects(base, edited)
		result := any(patch)
		if diffWrapExtends {
			result = diff.AsChildProfile(args[0], patch)
		}

		data, err := document.ToJSON(result)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffWrapExtends, "extends", false, "wrap the patch with $extends so it can be saved as a child profile")
	RootCmd.AddCommand(diffCmd)
}
