package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
	gormstore "github.com/doodlesbykumbi/threadly-in-go/pkg/server/store/gorm"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	Topics      *gormstore.TopicsStore
	Messages    *gormstore.MessagesStore
	HTTPClient  *http.Client
	Server      *ServerInstance
}

// NewTestContext creates a new test context with a PostgreSQL testcontainer
// and a running server.
// Modes:
//   - Binary mode: Set THREADLY_BINARY to the path of the threadlyctl binary
//   - Inline mode: Set THREADLY_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	inlineMode := os.Getenv("THREADLY_INLINE") == "1"
	binaryPath := os.Getenv("THREADLY_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either THREADLY_BINARY or THREADLY_INLINE=1 is required.\n\nBinary mode:\n  go build -o threadlyctl ./cmd/threadlyctl\n  INTEGRATION_TEST=1 THREADLY_BINARY=$(pwd)/threadlyctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 THREADLY_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("THREADLY_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("threadly_test"),
		tcpostgres.WithUsername("threadly"),
		tcpostgres.WithPassword("threadly"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := db.MigrateUp(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var instance *ServerInstance
	if inlineMode {
		instance, err = startInlineServer(database)
	} else {
		instance, err = startBinaryServer(binaryPath, connStr)
	}
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	hasher := credential.NewHasher(bcrypt.MinCost)
	return &TestContext{
		DB:          database,
		Container:   pgContainer,
		DatabaseURL: connStr,
		Topics:      gormstore.NewTopicsStore(database, hasher),
		Messages:    gormstore.NewMessagesStore(database),
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Server:      instance,
	}, nil
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Reset empties every table between scenarios.
func (tc *TestContext) Reset() error {
	return tc.DB.Exec(`TRUNCATE access_logs, messages, topics RESTART IDENTITY CASCADE`).Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if sqlDB, err := tc.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// serverProcess is the threadlyctl child in binary mode.
type serverProcess struct {
	cmd *exec.Cmd
}

func (p *serverProcess) stop() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
}
