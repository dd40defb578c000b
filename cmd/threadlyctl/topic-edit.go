package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// keyVerifier checks a raw key against a stored digest.
type keyVerifier interface {
	Verify(rawKey, digest string) bool
}

// topicEditCmd represents the topic edit command
var topicEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Rename a topic or rotate its key",
	Long: `Rename a topic and/or replace its key.

Rotating the key requires the current key, which is checked against the
stored digest first. A topic that has no key yet can be given one without it.
Keys are taken from --key/--new-key, then THREADLY_TOPIC_KEY and
THREADLY_NEW_TOPIC_KEY, then prompted for on a terminal.

Example:
  threadlyctl topic edit --name alerts --new-name alarms
  threadlyctl topic edit --name alerts --rotate-key`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		newName, _ := cmd.Flags().GetString("new-name")
		rotate, _ := cmd.Flags().GetBool("rotate-key")

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

		req := topicEdit{Name: name, NewName: newName}
		if rotate {
			if req.CurrentKey, req.NewKey, err = readRotationKeys(cmd, s.topics, name); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to edit topic: %v\n", err)
				s.Close()
				os.Exit(1)
			}
		}

		if err := editTopic(cmd.Context(), s.topics, s.hasher, os.Stdout, currentActor(), req); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to edit topic: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	topicCmd.AddCommand(topicEditCmd)
	topicEditCmd.Flags().StringP("name", "n", "", "Topic to edit")
	topicEditCmd.Flags().String("new-name", "", "New topic name")
	topicEditCmd.Flags().Bool("rotate-key", false, "Replace the topic key")
	topicEditCmd.Flags().StringP("key", "k", "", "Current topic key")
	topicEditCmd.Flags().String("new-key", "", "New topic key")
	_ = topicEditCmd.MarkFlagRequired("name")
}

// topicEdit describes a requested change. A nil NewKey leaves the key alone.
type topicEdit struct {
	Name       string
	NewName    string
	CurrentKey string
	NewKey     *string
}

func readRotationKeys(cmd *cobra.Command, topics store.TopicsStore, rawName string) (string, *string, error) {
	keyFlag, _ := cmd.Flags().GetString("key")
	newKeyFlag, _ := cmd.Flags().GetString("new-key")

	var current string
	name, err := topicName(rawName)
	if err != nil {
		return "", nil, err
	}
	if topic, err := topics.GetTopicByName(cmd.Context(), name); err == nil && topic.HasKey() {
		if current, err = readKey(keyFlag, topicKeyEnv, "Current key: "); err != nil {
			return "", nil, err
		}
	}

	next, err := readKey(newKeyFlag, newTopicKeyEnv, "New key: ")
	if err != nil {
		return "", nil, err
	}
	return current, &next, nil
}

func editTopic(ctx context.Context, topics store.TopicsStore, verifier keyVerifier, out io.Writer, actor string, req topicEdit) error {
	name, err := topicName(req.Name)
	if err != nil {
		return err
	}

	var newName *string
	if strings.TrimSpace(req.NewName) != "" {
		n, err := topicName(req.NewName)
		if err != nil {
			return err
		}
		newName = &n
	}
	if newName == nil && req.NewKey == nil {
		return errors.New("nothing to change: pass --new-name or --rotate-key")
	}
	if req.NewKey != nil && *req.NewKey == "" {
		return errors.New("new key must not be empty")
	}

	event := audit.TopicEvent{Actor: actor, Operation: "update", Topic: name, KeyRotated: req.NewKey != nil}
	if newName != nil {
		event.NewName = *newName
	}
	fail := func(err error) error {
		event.ErrorMessage = err.Error()
		emitAudit(event)
		return err
	}

	topic, err := topics.GetTopicByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			return fail(fmt.Errorf("topic '%s' not found", name))
		}
		return fail(err)
	}

	if req.NewKey != nil && topic.HasKey() && !verifier.Verify(req.CurrentKey, topic.KeyHash) {
		return fail(errors.New("current key does not match"))
	}

	if !topics.UpdateTopic(ctx, topic.ID, newName, req.NewKey) {
		return fail(fmt.Errorf("could not update topic '%s'; the new name may already be taken", name))
	}

	event.Success = true
	emitAudit(event)

	if newName != nil {
		fmt.Fprintf(out, "Renamed topic '%s' to '%s'\n", name, *newName)
	}
	if req.NewKey != nil {
		fmt.Fprintf(out, "Rotated key of topic '%s'\n", topic.Name)
	}
	return nil
}
