package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// messageListCmd represents the message list command
var messageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest messages of a topic",
	Long: `List the newest messages of a topic, newest first.

The default limit comes from message_list_limit. A limit of 0 lists all.

Example:
  threadlyctl message list --topic alerts
  threadlyctl message list --topic alerts --limit 50`,
	Run: func(cmd *cobra.Command, args []string) {
		topic, _ := cmd.Flags().GetString("topic")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		limit := cfg.MessageListLimit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}

		s, err := openStores(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer s.Close()

		if err := listMessages(cmd.Context(), s.topics, s.messages, os.Stdout, topic, limit); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list messages: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	messageCmd.AddCommand(messageListCmd)
	messageListCmd.Flags().StringP("topic", "t", "", "Topic name")
	messageListCmd.Flags().IntP("limit", "l", 10, "Maximum number of messages (0 for all)")
	_ = messageListCmd.MarkFlagRequired("topic")
}

// lookupTopic resolves a CLI-supplied topic name.
func lookupTopic(ctx context.Context, topics store.TopicsStore, rawName string) (*store.Topic, error) {
	name, err := topicName(rawName)
	if err != nil {
		return nil, err
	}
	topic, err := topics.GetTopicByName(ctx, name)
	if errors.Is(err, store.ErrTopicNotFound) {
		return nil, fmt.Errorf("topic '%s' not found", name)
	}
	return topic, err
}

func listMessages(ctx context.Context, topics store.TopicsStore, messages store.MessagesStore, out io.Writer, rawName string, limit int) error {
	topic, err := lookupTopic(ctx, topics, rawName)
	if err != nil {
		return err
	}

	list, err := messages.GetMessagesForTopic(ctx, topic.ID, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "No messages for topic '%s'\n", topic.Name)
		return nil
	}

	for _, m := range list {
		fmt.Fprintf(out, "[%s] #%d %s\n", m.CreatedAt.UTC().Format(time.RFC3339), m.ID, m.Title)
		if m.Body != "" {
			fmt.Fprintf(out, "    %s\n", m.Body)
		}
	}
	return nil
}
