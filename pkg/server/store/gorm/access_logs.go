package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/model"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure AccessLogStore implements store.AccessLogStore
var _ store.AccessLogStore = (*AccessLogStore)(nil)

// AccessLogStore implements store.AccessLogStore using GORM
type AccessLogStore struct {
	db    *gorm.DB
	clock Clock
}

// NewAccessLogStore creates a new AccessLogStore
func NewAccessLogStore(db *gorm.DB) *AccessLogStore {
	return &AccessLogStore{db: db}
}

// WithClock sets the time source used for created_at.
func (s *AccessLogStore) WithClock(clock Clock) *AccessLogStore {
	s.clock = clock
	return s
}

// RecordAccessLog appends an access log entry.
func (s *AccessLogStore) RecordAccessLog(ctx context.Context, messageID *int64, ipAddress string) (*store.AccessLog, error) {
	if ipAddress == "" || len(ipAddress) > model.MaxIPAddressLength {
		return nil, fmt.Errorf("invalid ip address %q", ipAddress)
	}

	entry := model.AccessLog{
		MessageID: messageID,
		IPAddress: ipAddress,
		CreatedAt: s.clock.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entry).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrForeignKeyViolation
		}
		return nil, err
	}

	return &store.AccessLog{
		ID:        entry.ID,
		MessageID: entry.MessageID,
		IPAddress: entry.IPAddress,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// CountAccessLogsSince counts the entries for ipAddress at or after since.
func (s *AccessLogStore) CountAccessLogsSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.AccessLog{}).
		Where("ip_address = ? AND created_at >= ?", ipAddress, since.UTC()).
		Count(&count).Error
	return count, err
}
