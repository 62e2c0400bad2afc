package cli

import (
	"fmt"

	"github.com/andywolf/ghcomment/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		// --verbose on the root means logging; -v here means the long form.
		long, _ := cmd.Flags().GetBool("long")
		if long {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("long", "v", false, "print verbose version information")
	rootCmd.AddCommand(versionCmd)
}
