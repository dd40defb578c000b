package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateName is returned when a topic name is already taken
var ErrDuplicateName = errors.New("topic name already exists")

// ErrTopicNotFound is returned when a topic doesn't exist
var ErrTopicNotFound = errors.New("topic not found")

// ErrEmptyName is returned when a topic name is blank
var ErrEmptyName = errors.New("topic name must not be empty")

// Topic is a named channel with its publishing key digest.
type Topic struct {
	ID        int64
	Name      string
	KeyHash   string
	CreatedAt time.Time
}

// HasKey reports whether a credential digest is set.
func (t Topic) HasKey() bool {
	return t.KeyHash != ""
}

// TopicsStore abstracts topic storage operations
type TopicsStore interface {
	// CreateTopic stores a new topic, hashing rawKey before it is persisted.
	// Returns ErrDuplicateName if the name is taken, including when a
	// concurrent creation of the same name commits first.
	CreateTopic(ctx context.Context, name, rawKey string) (*Topic, error)

	// GetTopicByName looks a topic up by its exact name.
	// Returns ErrTopicNotFound if there is none.
	GetTopicByName(ctx context.Context, name string) (*Topic, error)

	// GetTopicByID looks a topic up by id.
	// Returns ErrTopicNotFound if there is none.
	GetTopicByID(ctx context.Context, id int64) (*Topic, error)

	// ListTopics returns every topic ordered by name.
	ListTopics(ctx context.Context) ([]Topic, error)

	// UpdateTopic renames the topic and/or replaces its key. Nil or empty
	// values are left unchanged. The new key is hashed before storage.
	// It reports false on an unknown id, a duplicate name or any storage
	// error; the error itself is not returned.
	UpdateTopic(ctx context.Context, id int64, newName, newKey *string) bool
}
