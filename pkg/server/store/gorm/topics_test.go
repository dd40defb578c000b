package gorm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

func TestCreateTopic(t *testing.T) {
	s := newTestStores(t)

	topic, err := s.Topics.CreateTopic(ctx, "alerts", "s3cr3t")
	require.NoError(t, err)

	assert.NotZero(t, topic.ID)
	assert.Equal(t, "alerts", topic.Name)
	assert.NotEqual(t, "s3cr3t", topic.KeyHash)
	assert.True(t, s.Hasher.Verify("s3cr3t", topic.KeyHash))
	assert.Equal(t, s.Clock.Now(), topic.CreatedAt)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := s.Topics.CreateTopic(ctx, "alerts", "other")
		assert.ErrorIs(t, err, store.ErrDuplicateName)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := s.Topics.CreateTopic(ctx, "  ", "s3cr3t")
		assert.ErrorIs(t, err, store.ErrEmptyName)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := s.Topics.CreateTopic(ctx, "deploys", "")
		assert.ErrorIs(t, err, credential.ErrEmptyKey)
	})
}

func TestCreateTopicConcurrentDuplicate(t *testing.T) {
	s := newTestStores(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Topics.CreateTopic(ctx, "alerts", "s3cr3t")
		}(i)
	}
	wg.Wait()

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case assert.ErrorIs(t, err, store.ErrDuplicateName):
			duplicates++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, duplicates)
}

func TestGetTopic(t *testing.T) {
	s := newTestStores(t)

	created, err := s.Topics.CreateTopic(ctx, "alerts", "s3cr3t")
	require.NoError(t, err)

	byName, err := s.Topics.GetTopicByName(ctx, "alerts")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, created.KeyHash, byName.KeyHash)

	byID, err := s.Topics.GetTopicByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alerts", byID.Name)

	_, err = s.Topics.GetTopicByName(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrTopicNotFound)

	_, err = s.Topics.GetTopicByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, store.ErrTopicNotFound)
}

func TestListTopics(t *testing.T) {
	s := newTestStores(t)

	topics, err := s.Topics.ListTopics(ctx)
	require.NoError(t, err)
	assert.Empty(t, topics)

	for _, name := range []string{"deploys", "alerts", "builds"} {
		_, err := s.Topics.CreateTopic(ctx, name, "k")
		require.NoError(t, err)
	}

	topics, err = s.Topics.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "alerts", topics[0].Name)
	assert.Equal(t, "builds", topics[1].Name)
	assert.Equal(t, "deploys", topics[2].Name)
}

func TestUpdateTopic(t *testing.T) {
	s := newTestStores(t)

	alerts, err := s.Topics.CreateTopic(ctx, "alerts", "s3cr3t")
	require.NoError(t, err)
	_, err = s.Topics.CreateTopic(ctx, "deploys", "other")
	require.NoError(t, err)

	t.Run("rename", func(t *testing.T) {
		assert.True(t, s.Topics.UpdateTopic(ctx, alerts.ID, ptr("alarms"), nil))

		got, err := s.Topics.GetTopicByID(ctx, alerts.ID)
		require.NoError(t, err)
		assert.Equal(t, "alarms", got.Name)
		assert.Equal(t, alerts.KeyHash, got.KeyHash)
	})

	t.Run("rename to taken name fails", func(t *testing.T) {
		assert.False(t, s.Topics.UpdateTopic(ctx, alerts.ID, ptr("deploys"), nil))

		got, err := s.Topics.GetTopicByID(ctx, alerts.ID)
		require.NoError(t, err)
		assert.Equal(t, "alarms", got.Name)
	})

	t.Run("rotate key", func(t *testing.T) {
		assert.True(t, s.Topics.UpdateTopic(ctx, alerts.ID, nil, ptr("n3w-k3y")))

		got, err := s.Topics.GetTopicByID(ctx, alerts.ID)
		require.NoError(t, err)
		assert.True(t, s.Hasher.Verify("n3w-k3y", got.KeyHash))
		assert.False(t, s.Hasher.Verify("s3cr3t", got.KeyHash))
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		before, err := s.Topics.GetTopicByID(ctx, alerts.ID)
		require.NoError(t, err)

		assert.True(t, s.Topics.UpdateTopic(ctx, alerts.ID, ptr(""), ptr("")))

		after, err := s.Topics.GetTopicByID(ctx, alerts.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown topic", func(t *testing.T) {
		assert.False(t, s.Topics.UpdateTopic(ctx, alerts.ID+100, ptr("ghost"), nil))
	})
}
