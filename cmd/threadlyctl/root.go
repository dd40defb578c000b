package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "threadlyctl",
	Short: "Run and administer the threadly webhook service",
	Long: `Run the threadly webhook ingestion server and manage its topics,
messages and database schema.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
