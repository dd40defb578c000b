package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete messages past the retention period",
	Long: `Delete every message created more than --days days ago, along with
its access log entries. The default comes from retention_days (90).

Run it periodically, for example from cron.

Example:
  threadlyctl cleanup
  threadlyctl cleanup --days 30`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		days := cfg.RetentionDays
		if cmd.Flags().Changed("days") {
			days, _ = cmd.Flags().GetInt("days")
		}

		s, err := openStores(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer s.Close()

		if err := cleanupMessages(cmd.Context(), s.messages, os.Stdout, currentActor(), days, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntP("days", "d", 90, "Delete messages older than this many days")
}

func cleanupMessages(ctx context.Context, messages store.MessagesStore, out io.Writer, actor string, days int, now time.Time) error {
	if days <= 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}

	cutoff := now.UTC().AddDate(0, 0, -days)
	event := audit.CleanupEvent{Actor: actor, Days: days, Cutoff: cutoff}

	count, err := messages.CleanupOlderThan(ctx, cutoff)
	if err != nil {
		event.ErrorMessage = err.Error()
		emitAudit(event)
		return err
	}

	event.Count = count
	event.Success = true
	emitAudit(event)

	fmt.Fprintf(out, "Removed %d messages older than %d days\n", count, days)
	return nil
}
