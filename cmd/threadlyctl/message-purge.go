package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// messagePurgeCmd represents the message purge command
var messagePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every message of a topic",
	Long: `Delete every message of a topic. The topic itself is kept.

Example:
  threadlyctl message purge --topic alerts`,
	Run: func(cmd *cobra.Command, args []string) {
		topic, _ := cmd.Flags().GetString("topic")

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

		if err := purgeMessages(cmd.Context(), s.topics, s.messages, os.Stdout, currentActor(), topic); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to purge messages: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	messageCmd.AddCommand(messagePurgeCmd)
	messagePurgeCmd.Flags().StringP("topic", "t", "", "Topic name")
	_ = messagePurgeCmd.MarkFlagRequired("topic")
}

func purgeMessages(ctx context.Context, topics store.TopicsStore, messages store.MessagesStore, out io.Writer, actor, rawName string) error {
	topic, err := lookupTopic(ctx, topics, rawName)
	if err != nil {
		return err
	}

	event := audit.MessageEvent{Actor: actor, Operation: "purge", Topic: topic.Name}
	count, err := messages.DeleteMessagesByTopic(ctx, topic.ID)
	if err != nil {
		event.ErrorMessage = err.Error()
		emitAudit(event)
		return err
	}

	event.Count = count
	event.Success = true
	emitAudit(event)

	fmt.Fprintf(out, "Deleted %d messages from topic '%s'\n", count, topic.Name)
	return nil
}
