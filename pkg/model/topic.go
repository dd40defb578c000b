package model

import (
	"time"

	"gorm.io/gorm"
)

type Topic struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:255;uniqueIndex;not null"`
	KeyHash   string    `gorm:"column:key_hash;size:255;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Topic) TableName() string {
	return "topics"
}

// HasKey reports whether a credential digest has been set for the topic.
func (t *Topic) HasKey() bool {
	return t.KeyHash != ""
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}
