package store

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a message doesn't exist
var ErrMessageNotFound = errors.New("message not found")

// ErrForeignKeyViolation is returned when a row refers to a topic or message that does not exist
var ErrForeignKeyViolation = errors.New("referenced record does not exist")

// Message is a persisted payload together with the name of its topic.
type Message struct {
	ID        int64
	TopicID   int64
	TopicName string
	Title     string
	Body      string
	CreatedAt time.Time
}

// MessagesStore abstracts message storage operations
type MessagesStore interface {
	// AddMessage stores a message under topicID.
	// Returns ErrForeignKeyViolation if the topic doesn't exist.
	AddMessage(ctx context.Context, topicID int64, title, body string) (*Message, error)

	// GetMessagesForTopic returns the newest messages of a topic first,
	// at most limit of them. A limit of zero or less means no bound.
	GetMessagesForTopic(ctx context.Context, topicID int64, limit int) ([]Message, error)

	// GetMessageByID fetches a single message.
	// Returns ErrMessageNotFound if it doesn't exist.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// DeleteMessageByID removes a message and its access log entries and
	// returns what was deleted. Returns ErrMessageNotFound if it doesn't exist.
	DeleteMessageByID(ctx context.Context, id int64) (*Message, error)

	// DeleteMessagesByTopic removes every message of a topic and returns
	// how many were deleted.
	DeleteMessagesByTopic(ctx context.Context, topicID int64) (int64, error)

	// CleanupOlderThan removes messages created before cutoff and returns
	// how many were deleted.
	CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
