package main

import (
	"fmt"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mdgraph",
	Run: func(cmd *cobra.Command, args []string) {
		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout(), mdgraph.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mdgraph version %s\n", mdgraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
