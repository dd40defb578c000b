package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/model"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure MessagesStore implements store.MessagesStore
var _ store.MessagesStore = (*MessagesStore)(nil)

// MessagesStore implements store.MessagesStore using GORM
type MessagesStore struct {
	db    *gorm.DB
	clock Clock
}

// NewMessagesStore creates a new MessagesStore
func NewMessagesStore(db *gorm.DB) *MessagesStore {
	return &MessagesStore{db: db}
}

// WithClock sets the time source used for created_at.
func (s *MessagesStore) WithClock(clock Clock) *MessagesStore {
	s.clock = clock
	return s
}

// AddMessage stores a message after checking its topic exists.
func (s *MessagesStore) AddMessage(ctx context.Context, topicID int64, title, body string) (*store.Message, error) {
	var (
		msg       model.Message
		topicName string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic model.Topic
		if err := tx.Select("id", "name").Where("id = ?", topicID).First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrForeignKeyViolation
			}
			return err
		}
		topicName = topic.Name

		msg = model.Message{
			TopicID:   topicID,
			Title:     title,
			Body:      body,
			CreatedAt: s.clock.now(),
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrForeignKeyViolation) || isForeignKeyViolation(err) {
			return nil, store.ErrForeignKeyViolation
		}
		return nil, err
	}

	return toMessage(model.MessageWithTopic{Message: msg, TopicName: topicName}), nil
}

// GetMessagesForTopic returns the newest messages of a topic first.
func (s *MessagesStore) GetMessagesForTopic(ctx context.Context, topicID int64, limit int) ([]store.Message, error) {
	q := withTopicName(s.db.WithContext(ctx)).
		Where("messages.topic_id = ?", topicID).
		Order("messages.created_at DESC").
		Order("messages.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []model.MessageWithTopic
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]store.Message, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toMessage(row))
	}
	return result, nil
}

// GetMessageByID fetches a single message with its topic name.
func (s *MessagesStore) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	row, err := findMessage(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return toMessage(*row), nil
}

// DeleteMessageByID removes a message and its access log entries.
func (s *MessagesStore) DeleteMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	var deleted *model.MessageWithTopic

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findMessage(tx, id)
		if err != nil {
			return err
		}
		deleted = row

		if err := tx.Where("message_id = ?", id).Delete(&model.AccessLog{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Message{}).Error
	})
	if err != nil {
		return nil, err
	}

	return toMessage(*deleted), nil
}

// DeleteMessagesByTopic removes all messages of a topic.
func (s *MessagesStore) DeleteMessagesByTopic(ctx context.Context, topicID int64) (int64, error) {
	return s.deleteWhere(ctx, "topic_id = ?", topicID)
}

// CleanupOlderThan removes messages created before cutoff.
func (s *MessagesStore) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(ctx, "created_at < ?", cutoff.UTC())
}

// deleteWhere removes the matching messages and their access log entries
// in one transaction and returns the number of messages removed.
func (s *MessagesStore) deleteWhere(ctx context.Context, query string, arg interface{}) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&model.Message{}).Select("id").Where(query, arg)
		if err := tx.Where("message_id IN (?)", ids).Delete(&model.AccessLog{}).Error; err != nil {
			return err
		}

		res := tx.Where(query, arg).Delete(&model.Message{})
		count = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func withTopicName(db *gorm.DB) *gorm.DB {
	return db.Table("messages").
		Select("messages.id, messages.topic_id, messages.title, messages.body, messages.created_at, topics.name AS topic_name").
		Joins("JOIN topics ON topics.id = messages.topic_id")
}

func findMessage(db *gorm.DB, id int64) (*model.MessageWithTopic, error) {
	var rows []model.MessageWithTopic
	if err := withTopicName(db).Where("messages.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrMessageNotFound
	}
	return &rows[0], nil
}

func toMessage(m model.MessageWithTopic) *store.Message {
	return &store.Message{
		ID:        m.ID,
		TopicID:   m.TopicID,
		TopicName: m.TopicName,
		Title:     m.Title,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
