package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X .../cmd.version=..." on release builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "amortize version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
