package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
	gormstore "github.com/doodlesbykumbi/threadly-in-go/pkg/server/store/gorm"
)

var ctx = context.Background()

// auditRecorder captures the events a command emits.
type auditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *auditRecorder) record(e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *auditRecorder) last(t *testing.T) audit.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func recordAudit(t *testing.T) *auditRecorder {
	t.Helper()
	rec := &auditRecorder{}
	prev := emitAudit
	emitAudit = rec.record
	t.Cleanup(func() { emitAudit = prev })
	return rec
}

// testDB migrates a fresh sqlite database and returns its URL.
func testDB(t *testing.T) string {
	t.Helper()
	dbURL := "sqlite3://" + filepath.Join(t.TempDir(), "threadly.db")
	require.NoError(t, db.MigrateUp(dbURL))
	return dbURL
}

func newTestStores(t *testing.T, now func() time.Time) *stores {
	t.Helper()

	database, err := db.Connect(db.Config{URL: testDB(t)})
	require.NoError(t, err)

	hasher := credential.NewHasher(bcrypt.MinCost)
	s := &stores{
		db:         database,
		hasher:     hasher,
		topics:     gormstore.NewTopicsStore(database, hasher),
		messages:   gormstore.NewMessagesStore(database),
		accessLogs: gormstore.NewAccessLogStore(database),
	}
	if now != nil {
		s.topics = s.topics.WithClock(now)
		s.messages = s.messages.WithClock(now)
		s.accessLogs = s.accessLogs.WithClock(now)
	}
	t.Cleanup(s.Close)
	return s
}
