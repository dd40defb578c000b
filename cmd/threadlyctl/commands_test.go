package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationCommands(t *testing.T) {
	dbURL := "sqlite3://" + filepath.Join(t.TempDir(), "threadly.db")
	var out bytes.Buffer

	require.NoError(t, showMigrationStatus(dbURL, &out))
	assert.Contains(t, out.String(), "No migrations have been applied yet")

	out.Reset()
	require.NoError(t, runMigrations(dbURL, &out))
	assert.Contains(t, out.String(), "Migrations complete")

	out.Reset()
	require.NoError(t, runMigrations(dbURL, &out))
	assert.Contains(t, out.String(), "database is up to date")

	out.Reset()
	require.NoError(t, showMigrationStatus(dbURL, &out))
	assert.Contains(t, out.String(), "Current version:")
	assert.NotContains(t, out.String(), "dirty state")

	out.Reset()
	require.NoError(t, runMigrationsDown(dbURL, 1, &out))
	assert.Contains(t, out.String(), "Rolling back 1 migration(s)")

	assert.Error(t, runMigrations("", &out))
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("THREADLY_CONFIG_PATH", dir)
	for _, name := range []string{
		"THREADLY_TRUSTED_PROXIES", "THREADLY_RATE_LIMIT", "THREADLY_RATE_LIMIT_WINDOW_SECONDS",
		"THREADLY_RETENTION_DAYS", "THREADLY_MESSAGE_LIST_LIMIT", "THREADLY_KEY_HASH_COST",
		"THREADLY_MAX_PAYLOAD_BYTES", "THREADLY_LOG_LEVEL", "THREADLY_LOG_FILE", "LOG_FILE",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func TestShowConfiguration(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "threadly.yml"), []byte("retention_days: 30\n"), 0o600))
	t.Setenv("THREADLY_RATE_LIMIT", "7")

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, "text"))
	assert.Regexp(t, `rate_limit\s+7\s+environment`, out.String())
	assert.Regexp(t, `retention_days\s+30\s+file`, out.String())

	out.Reset()
	require.NoError(t, showConfiguration(&out, "json"))
	assert.True(t, json.Valid(out.Bytes()))

	assert.Error(t, showConfiguration(&out, "yaml"))
}

func TestApplyConfigurationTestMode(t *testing.T) {
	dir := isolateConfig(t)

	var out bytes.Buffer
	require.NoError(t, applyConfiguration(&out, true))
	assert.Contains(t, out.String(), "Configuration is valid.")
	assert.Contains(t, out.String(), "not signalling")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "threadly.yml"), []byte("retention_days: 0\n"), 0o600))
	assert.Error(t, applyConfiguration(&out, true))
}

func TestWaitForServer(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		var out bytes.Buffer
		require.NoError(t, waitForServer(&out, srv.URL+"/health", 5, time.Millisecond))
		assert.Contains(t, out.String(), "threadly is ready!")
		assert.Equal(t, 3, calls)
	})

	t.Run("never ready", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		var out bytes.Buffer
		err := waitForServer(&out, srv.URL+"/health", 2, time.Millisecond)
		assert.EqualError(t, err, "threadly is not ready after 2 attempts")
	})
}
