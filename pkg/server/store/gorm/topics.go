package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/model"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure TopicsStore implements store.TopicsStore
var _ store.TopicsStore = (*TopicsStore)(nil)

// KeyHasher turns a raw topic key into the digest that gets stored.
type KeyHasher interface {
	Hash(rawKey string) (string, error)
}

// TopicsStore implements store.TopicsStore using GORM
type TopicsStore struct {
	db     *gorm.DB
	hasher KeyHasher
	clock  Clock
}

// NewTopicsStore creates a new TopicsStore
func NewTopicsStore(db *gorm.DB, hasher KeyHasher) *TopicsStore {
	return &TopicsStore{db: db, hasher: hasher}
}

// WithClock sets the time source used for created_at.
func (s *TopicsStore) WithClock(clock Clock) *TopicsStore {
	s.clock = clock
	return s
}

// CreateTopic hashes rawKey and stores a new topic.
func (s *TopicsStore) CreateTopic(ctx context.Context, name, rawKey string) (*store.Topic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, store.ErrEmptyName
	}

	digest, err := s.hasher.Hash(rawKey)
	if err != nil {
		return nil, err
	}

	topic := model.Topic{
		Name:      name,
		KeyHash:   digest,
		CreatedAt: s.clock.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&topic).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateName
		}
		return nil, err
	}

	return toTopic(topic), nil
}

// GetTopicByName looks a topic up by its exact name.
func (s *TopicsStore) GetTopicByName(ctx context.Context, name string) (*store.Topic, error) {
	return s.first(ctx, "name = ?", name)
}

// GetTopicByID looks a topic up by id.
func (s *TopicsStore) GetTopicByID(ctx context.Context, id int64) (*store.Topic, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *TopicsStore) first(ctx context.Context, query string, arg interface{}) (*store.Topic, error) {
	var topic model.Topic
	tx := s.db.WithContext(ctx).Where(query, arg).First(&topic)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrTopicNotFound
		}
		return nil, tx.Error
	}
	return toTopic(topic), nil
}

// ListTopics returns every topic ordered by name.
func (s *TopicsStore) ListTopics(ctx context.Context) ([]store.Topic, error) {
	var topics []model.Topic
	if err := s.db.WithContext(ctx).Order("name").Find(&topics).Error; err != nil {
		return nil, err
	}

	result := make([]store.Topic, 0, len(topics))
	for _, t := range topics {
		result = append(result, *toTopic(t))
	}
	return result, nil
}

// UpdateTopic renames the topic and/or rotates its key. Failures of any
// kind are reported as false.
func (s *TopicsStore) UpdateTopic(ctx context.Context, id int64, newName, newKey *string) bool {
	updates := map[string]interface{}{}
	if newName != nil && strings.TrimSpace(*newName) != "" {
		updates["name"] = *newName
	}
	if newKey != nil && *newKey != "" {
		digest, err := s.hasher.Hash(*newKey)
		if err != nil {
			return false
		}
		updates["key_hash"] = digest
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic model.Topic
		if err := tx.Select("id").Where("id = ?", id).First(&topic).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&model.Topic{}).Where("id = ?", id).Updates(updates).Error
	})
	return err == nil
}

func toTopic(t model.Topic) *store.Topic {
	return &store.Topic{
		ID:        t.ID,
		Name:      t.Name,
		KeyHash:   t.KeyHash,
		CreatedAt: t.CreatedAt,
	}
}
