package store

import (
	"context"
	"time"
)

// AccessLog records the client address seen for a publish.
type AccessLog struct {
	ID        int64
	MessageID *int64
	IPAddress string
	CreatedAt time.Time
}

// AccessLogStore abstracts the access log used for auditing and rate limiting
type AccessLogStore interface {
	// RecordAccessLog appends an entry. messageID may be nil.
	RecordAccessLog(ctx context.Context, messageID *int64, ipAddress string) (*AccessLog, error)

	// CountAccessLogsSince counts entries for ipAddress created at or after since.
	CountAccessLogsSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
}
