package gorm

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
)

// testClock is a settable time source shared by the stores under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testStores struct {
	DB         *gorm.DB
	Hasher     *credential.Hasher
	Clock      *testClock
	Topics     *TopicsStore
	Messages   *MessagesStore
	AccessLogs *AccessLogStore
}

// newTestStores migrates a fresh sqlite database and wires every store to it.
func newTestStores(t *testing.T) *testStores {
	t.Helper()

	dbURL := "sqlite3://" + filepath.Join(t.TempDir(), "threadly.db")
	require.NoError(t, db.MigrateUp(dbURL))

	database, err := db.Connect(db.Config{URL: dbURL})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := newTestClock(fixedTime)
	hasher := credential.NewHasher(bcrypt.MinCost)

	return &testStores{
		DB:         database,
		Hasher:     hasher,
		Clock:      clock,
		Topics:     NewTopicsStore(database, hasher).WithClock(clock.Now),
		Messages:   NewMessagesStore(database).WithClock(clock.Now),
		AccessLogs: NewAccessLogStore(database).WithClock(clock.Now),
	}
}

func ptr[T any](v T) *T {
	return &v
}

var (
	ctx       = context.Background()
	fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)
