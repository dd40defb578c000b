package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// topicListCmd represents the topic list command
var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	Long: `List every topic with its id, creation time and whether a key is set.

Example:
  threadlyctl topic list`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		s, err := openStores(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer s.Close()

		if err := listTopics(cmd.Context(), s.topics, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list topics: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	topicCmd.AddCommand(topicListCmd)
}

func listTopics(ctx context.Context, topics store.TopicsStore, out io.Writer) error {
	all, err := topics.ListTopics(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No topics")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-30s %-20s %s\n", "ID", "NAME", "CREATED", "KEY")
	for _, t := range all {
		key := "set"
		if !t.HasKey() {
			key = "missing"
		}
		fmt.Fprintf(out, "%-6d %-30s %-20s %s\n", t.ID, t.Name, t.CreatedAt.UTC().Format(time.RFC3339), key)
	}
	return nil
}
