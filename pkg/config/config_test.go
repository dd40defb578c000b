package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var envVars = []string{
	"THREADLY_TRUSTED_PROXIES",
	"THREADLY_RATE_LIMIT",
	"THREADLY_RATE_LIMIT_WINDOW_SECONDS",
	"THREADLY_RETENTION_DAYS",
	"THREADLY_MESSAGE_LIST_LIMIT",
	"THREADLY_KEY_HASH_COST",
	"THREADLY_MAX_PAYLOAD_BYTES",
	"THREADLY_LOG_LEVEL",
	"THREADLY_LOG_FILE",
	"LOG_FILE",
}

// isolate points the loader at an empty temp dir, clears the environment
// and resets the singleton. It returns the config directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("THREADLY_CONFIG_PATH", dir)
	for _, name := range envVars {
		t.Setenv(name, "")
	}
	resetGlobal()
	t.Cleanup(resetGlobal)
	return dir
}

func resetGlobal() {
	configMu.Lock()
	globalConfig = nil
	configMu.Unlock()
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(dir, "threadly.yml"), cfg.ConfigFilePath())
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 60, cfg.RateLimitWindowSeconds)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, 10, cfg.MessageListLimit)
	assert.Equal(t, 10, cfg.KeyHashCost)
	assert.Equal(t, int64(1048576), cfg.MaxPayloadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.LogFile)

	for _, attr := range cfg.Attributes() {
		assert.Equal(t, "default", attr.Source, attr.Name)
	}

	policy := cfg.RateLimitPolicy()
	assert.Equal(t, 5, policy.Limit)
	assert.Equal(t, time.Minute, policy.Window)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
trusted_proxies:
  - 10.0.0.0/8
rate_limit: 0
retention_days: 30
log_level: debug
`)
	t.Setenv("THREADLY_RETENTION_DAYS", "7")
	t.Setenv("THREADLY_MESSAGE_LIST_LIMIT", "25")
	t.Setenv("LOG_FILE", "/var/log/threadly.log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "file", cfg.Source("trusted_proxies"))

	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, "file", cfg.Source("rate_limit"))

	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, "environment", cfg.Source("retention_days"))

	assert.Equal(t, 25, cfg.MessageListLimit)
	assert.Equal(t, "environment", cfg.Source("message_list_limit"))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "file", cfg.Source("log_level"))

	assert.Equal(t, "/var/log/threadly.log", cfg.LogFile)
	assert.Equal(t, "environment", cfg.Source("log_file"))

	assert.Equal(t, "default", cfg.Source("key_hash_cost"))
	assert.Equal(t, "default", cfg.Source("no_such_attribute"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "rate_limit: [")

		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("bad env integer", func(t *testing.T) {
		isolate(t)
		t.Setenv("THREADLY_RATE_LIMIT", "five")

		_, err := Load()
		assert.ErrorContains(t, err, "THREADLY_RATE_LIMIT")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ThreadlyConfig)
		wantErr string
	}{
		{"defaults", func(c *ThreadlyConfig) {}, ""},
		{"proxy ip and cidr", func(c *ThreadlyConfig) { c.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"} }, ""},
		{"bad proxy", func(c *ThreadlyConfig) { c.TrustedProxies = []string{"proxy.local"} }, "invalid trusted_proxies value"},
		{"rate limit disabled", func(c *ThreadlyConfig) { c.RateLimit = 0 }, ""},
		{"zero window", func(c *ThreadlyConfig) { c.RateLimitWindowSeconds = 0 }, "rate_limit_window_seconds"},
		{"zero retention", func(c *ThreadlyConfig) { c.RetentionDays = 0 }, "retention_days"},
		{"zero list limit", func(c *ThreadlyConfig) { c.MessageListLimit = 0 }, "message_list_limit"},
		{"cost too low", func(c *ThreadlyConfig) { c.KeyHashCost = 3 }, "key_hash_cost"},
		{"cost too high", func(c *ThreadlyConfig) { c.KeyHashCost = 32 }, "key_hash_cost"},
		{"zero payload", func(c *ThreadlyConfig) { c.MaxPayloadBytes = 0 }, "max_payload_bytes"},
		{"bad level", func(c *ThreadlyConfig) { c.LogLevel = "chatty" }, "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTrustedProxies(t *testing.T) {
	cfg := newDefault()

	assert.False(t, cfg.IsTrustedProxy("10.0.0.1"))
	assert.True(t, cfg.TrustsForwardedFor("10.0.0.1"), "empty list trusts every peer")

	cfg.TrustedProxies = []string{"10.0.0.0/8", "2001:db8::1"}

	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.True(t, cfg.IsTrustedProxy("2001:db8:0::1"))
	assert.False(t, cfg.IsTrustedProxy("192.168.1.1"))
	assert.False(t, cfg.IsTrustedProxy("not-an-ip"))

	assert.True(t, cfg.TrustsForwardedFor("10.1.2.3"))
	assert.False(t, cfg.TrustsForwardedFor("192.168.1.1"))
}

func TestRetentionCutoff(t *testing.T) {
	cfg := newDefault()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), cfg.RetentionCutoff(now))
}

func TestFormat(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	text := cfg.FormatText()
	assert.Contains(t, text, "Config file: "+filepath.Join(dir, "threadly.yml"))
	assert.Contains(t, text, "rate_limit")
	assert.Contains(t, text, "(not set)")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
	assert.Equal(t, "trusted_proxies", decoded.Attributes[0].Name)
}

func TestGetAndReload(t *testing.T) {
	dir := isolate(t)

	assert.Equal(t, 5, Get().RateLimit)

	writeConfig(t, dir, "rate_limit: 20\n")
	assert.Equal(t, 5, Get().RateLimit, "Get is cached until Reload")

	require.NoError(t, Reload())
	assert.Equal(t, 20, Get().RateLimit)

	writeConfig(t, dir, "retention_days: -1\n")
	assert.Error(t, Reload())
	assert.Equal(t, 20, Get().RateLimit, "invalid config keeps the previous one")
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b,"))
	assert.Empty(t, splitAndTrim(""))
}

func TestWatch(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "rate_limit: 5\n")
	Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, zap.NewNop(), func(cfg *ThreadlyConfig) {
			seen.Store(int64(cfg.RateLimit))
		})
	}()

	// the watcher may not be registered yet, so keep rewriting
	require.Eventually(t, func() bool {
		writeConfig(t, dir, "rate_limit: 42\n")
		return seen.Load() == 42
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}

	assert.True(t, strings.HasSuffix(Get().ConfigFilePath(), ConfigFileName))
}
