package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xskills/xskills/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the xskills version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
