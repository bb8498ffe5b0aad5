package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mathemads/bonsai"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bonsai",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bonsai version %s\n", strings.TrimSpace(bonsai.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
