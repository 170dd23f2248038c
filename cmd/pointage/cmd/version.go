package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pointage %s (commit %s, built %s by %s)\n",
			Version, Commit, Date, BuiltBy)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
