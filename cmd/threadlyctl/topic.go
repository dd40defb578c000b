package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// topicCmd represents the topic command
var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage topics",
	Long:  `Create, list and edit the topics publishers send messages to.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'topic' requires a subcommand (add, list, edit)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(topicCmd)
}
