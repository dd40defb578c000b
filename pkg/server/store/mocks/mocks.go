// Package mocks provides testify mocks of the store interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// TopicsStore implements store.TopicsStore for testing using testify/mock
type TopicsStore struct {
	mock.Mock
}

func (m *TopicsStore) CreateTopic(ctx context.Context, name, rawKey string) (*store.Topic, error) {
	args := m.Called(ctx, name, rawKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Topic), args.Error(1)
}

func (m *TopicsStore) GetTopicByName(ctx context.Context, name string) (*store.Topic, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Topic), args.Error(1)
}

func (m *TopicsStore) GetTopicByID(ctx context.Context, id int64) (*store.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Topic), args.Error(1)
}

func (m *TopicsStore) ListTopics(ctx context.Context) ([]store.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Topic), args.Error(1)
}

func (m *TopicsStore) UpdateTopic(ctx context.Context, id int64, newName, newKey *string) bool {
	args := m.Called(ctx, id, newName, newKey)
	return args.Bool(0)
}

// MessagesStore implements store.MessagesStore for testing using testify/mock
type MessagesStore struct {
	mock.Mock
}

func (m *MessagesStore) AddMessage(ctx context.Context, topicID int64, title, body string) (*store.Message, error) {
	args := m.Called(ctx, topicID, title, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Message), args.Error(1)
}

func (m *MessagesStore) GetMessagesForTopic(ctx context.Context, topicID int64, limit int) ([]store.Message, error) {
	args := m.Called(ctx, topicID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Message), args.Error(1)
}

func (m *MessagesStore) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Message), args.Error(1)
}

func (m *MessagesStore) DeleteMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Message), args.Error(1)
}

func (m *MessagesStore) DeleteMessagesByTopic(ctx context.Context, topicID int64) (int64, error) {
	args := m.Called(ctx, topicID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessagesStore) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// AccessLogStore implements store.AccessLogStore for testing using testify/mock
type AccessLogStore struct {
	mock.Mock
}

func (m *AccessLogStore) RecordAccessLog(ctx context.Context, messageID *int64, ipAddress string) (*store.AccessLog, error) {
	args := m.Called(ctx, messageID, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AccessLog), args.Error(1)
}

func (m *AccessLogStore) CountAccessLogsSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

// HealthStore implements store.HealthStore for testing using testify/mock
type HealthStore struct {
	mock.Mock
}

func (m *HealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ store.TopicsStore    = (*TopicsStore)(nil)
	_ store.MessagesStore  = (*MessagesStore)(nil)
	_ store.AccessLogStore = (*AccessLogStore)(nil)
	_ store.HealthStore    = (*HealthStore)(nil)
)
