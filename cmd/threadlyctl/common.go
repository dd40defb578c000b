package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/config"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/sanitize"
	gormstore "github.com/doodlesbykumbi/threadly-in-go/pkg/server/store/gorm"
)

const (
	topicKeyEnv    = "THREADLY_TOPIC_KEY"
	newTopicKeyEnv = "THREADLY_NEW_TOPIC_KEY"
)

// emitAudit is swapped out in tests.
var emitAudit = audit.Log

// stores bundles the gorm stores the admin commands work on.
type stores struct {
	db         *gorm.DB
	hasher     *credential.Hasher
	topics     *gormstore.TopicsStore
	messages   *gormstore.MessagesStore
	accessLogs *gormstore.AccessLogStore
}

func openStores(cfg *config.ThreadlyConfig) (*stores, error) {
	database, err := db.Connect(db.Config{Debug: cfg.LogLevel == "debug"})
	if err != nil {
		return nil, err
	}

	hasher := credential.NewHasher(cfg.KeyHashCost)
	return &stores{
		db:         database,
		hasher:     hasher,
		topics:     gormstore.NewTopicsStore(database, hasher),
		messages:   gormstore.NewMessagesStore(database),
		accessLogs: gormstore.NewAccessLogStore(database),
	}, nil
}

func (s *stores) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// loadConfig loads and validates the configuration for a command.
func loadConfig() (*config.ThreadlyConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// currentActor names the operator for audit events.
func currentActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// topicName sanitizes a topic name the same way the webhook does, so that
// names created here are the ones publishers resolve.
func topicName(raw string) (string, error) {
	name := sanitize.Text(raw)
	err := validation.Validate(name,
		validation.Required.Error("topic name is required"),
		validation.RuneLength(1, 255).Error("topic name must be at most 255 characters"),
	)
	if err != nil {
		return "", err
	}
	return name, nil
}

// readKey resolves a topic key from the flag, then the environment, then a
// hidden prompt when stdin is a terminal.
func readKey(flagValue, envName, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envName); v != "" {
		return v, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no key given: pass it as a flag, set %s or run on a terminal", envName)
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}

	key := strings.TrimRight(string(raw), "\r\n")
	if key == "" {
		return "", errors.New("key must not be empty")
	}
	return key, nil
}
