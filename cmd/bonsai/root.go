package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bonsai",
	Short: "Bonsai compiles decision-tree graphs into bidding-language text",
	Long:  `Bonsai reads a decision-tree graph document (YAML or JSON) and emits the equivalent whitespace-indented bidding program.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a conversion config file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging on stderr")
}
