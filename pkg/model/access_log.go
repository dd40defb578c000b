package model

import (
	"time"

	"gorm.io/gorm"
)

// MaxIPAddressLength fits the longest textual IPv6 form, including an
// embedded IPv4 suffix.
const MaxIPAddressLength = 45

type AccessLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MessageID *int64    `gorm:"column:message_id;index"`
	IPAddress string    `gorm:"column:ip_address;size:45;not null;index:idx_access_logs_ip_created,priority:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_access_logs_ip_created,priority:2"`
}

func (AccessLog) TableName() string {
	return "access_logs"
}

func (a *AccessLog) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}
