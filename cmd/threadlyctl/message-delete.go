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

// messageDeleteCmd represents the message delete command
var messageDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a message by id",
	Long: `Delete a single message together with its access log entries.

Example:
  threadlyctl message delete --id 42`,
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetInt64("id")

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

		if err := deleteMessage(cmd.Context(), s.messages, os.Stdout, currentActor(), id); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete message: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	messageCmd.AddCommand(messageDeleteCmd)
	messageDeleteCmd.Flags().Int64("id", 0, "Message id")
	_ = messageDeleteCmd.MarkFlagRequired("id")
}

func deleteMessage(ctx context.Context, messages store.MessagesStore, out io.Writer, actor string, id int64) error {
	event := audit.MessageEvent{Actor: actor, Operation: "delete", StoredID: id}

	deleted, err := messages.DeleteMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			err = fmt.Errorf("message %d not found", id)
		}
		event.ErrorMessage = err.Error()
		emitAudit(event)
		return err
	}

	event.Topic = deleted.TopicName
	event.Count = 1
	event.Success = true
	emitAudit(event)

	fmt.Fprintf(out, "Deleted message %d from topic '%s'\n", deleted.ID, deleted.TopicName)
	return nil
}
