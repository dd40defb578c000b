package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// topicAddCmd represents the topic add command
var topicAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a topic",
	Long: `Create a topic and set the key publishers must present.

The key is stored as a bcrypt digest only. When --key is omitted it is read
from THREADLY_TOPIC_KEY, or prompted for without echo on a terminal.

Example:
  threadlyctl topic add --name alerts
  THREADLY_TOPIC_KEY=s3cr3t threadlyctl topic add --name alerts`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		keyFlag, _ := cmd.Flags().GetString("key")

		key, err := readKey(keyFlag, topicKeyEnv, "Topic key: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create topic: %v\n", err)
			os.Exit(1)
		}

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

		if err := addTopic(cmd.Context(), s.topics, os.Stdout, currentActor(), name, key); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create topic: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	topicCmd.AddCommand(topicAddCmd)
	topicAddCmd.Flags().StringP("name", "n", "", "Topic name")
	topicAddCmd.Flags().StringP("key", "k", "", "Topic key (prompted for when omitted)")
	_ = topicAddCmd.MarkFlagRequired("name")
}

func addTopic(ctx context.Context, topics store.TopicsStore, out io.Writer, actor, rawName, key string) error {
	name, err := topicName(rawName)
	if err != nil {
		return err
	}

	event := audit.TopicEvent{Actor: actor, Operation: "create", Topic: name}
	topic, err := topics.CreateTopic(ctx, name, key)
	if err != nil {
		event.ErrorMessage = err.Error()
		emitAudit(event)
		if errors.Is(err, store.ErrDuplicateName) {
			return fmt.Errorf("topic '%s' already exists", name)
		}
		return err
	}

	event.Success = true
	emitAudit(event)

	fmt.Fprintf(out, "Created topic '%s' (id %d)\n", topic.Name, topic.ID)
	return nil
}
