package model

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TopicID   int64     `gorm:"column:topic_id;not null;index"`
	Title     string    `gorm:"column:title;size:255;not null"`
	Body      string    `gorm:"column:body;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}

// MessageWithTopic is a message row joined with the name of its topic.
type MessageWithTopic struct {
	Message
	TopicName string `gorm:"column:topic_name"`
}
