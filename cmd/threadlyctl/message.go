package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// messageCmd represents the message command
var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Inspect and delete stored messages",
	Long:  `List the messages of a topic and delete them one by one or per topic.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'message' requires a subcommand (list, delete, purge)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(messageCmd)
}
