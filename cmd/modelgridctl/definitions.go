package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// definitionsCmd represents the definitions command
var definitionsCmd = &cobra.Command{
	Use:   "definitions",
	Short: "Manage model definitions",
	Long:  `Manage model definitions from the command line.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'definitions' requires a subcommand (load, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(definitionsCmd)
}
