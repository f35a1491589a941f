package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modelgridctl",
	Short: "ModelGrid dynamic model engine",
	Long: `ModelGrid lets you define data models at runtime and serves
role-based CRUD APIs for them without code generation or restarts.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
