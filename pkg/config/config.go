package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	applog "github.com/doodlesbykumbi/threadly-in-go/pkg/log"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ratelimit"
)

const (
	DefaultConfigPath = "/etc/threadly"
	ConfigFileName    = "threadly.yml"
)

// ThreadlyConfig holds all threadly configuration settings
type ThreadlyConfig struct {
	// TrustedProxies lists the CIDR ranges or addresses allowed to set
	// X-Forwarded-For. Empty means every peer is trusted.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// RateLimit is the number of publishes allowed per address per window.
	// Zero or less disables rate limiting.
	RateLimit int `yaml:"rate_limit" json:"rate_limit"`

	// RateLimitWindowSeconds is the length of the rate limit window
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds" json:"rate_limit_window_seconds"`

	// RetentionDays is the default age cutoff for "threadlyctl cleanup"
	RetentionDays int `yaml:"retention_days" json:"retention_days"`

	// MessageListLimit is the default page size for "threadlyctl message list"
	MessageListLimit int `yaml:"message_list_limit" json:"message_list_limit"`

	// KeyHashCost is the bcrypt cost used for new topic keys
	KeyHashCost int `yaml:"key_hash_cost" json:"key_hash_cost"`

	// MaxPayloadBytes caps the size of a webhook request body
	MaxPayloadBytes int64 `yaml:"max_payload_bytes" json:"max_payload_bytes"`

	// LogLevel is the application log level
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFile is an optional file receiving a copy of the application log
	LogFile string `yaml:"log_file" json:"log_file"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors ThreadlyConfig with pointers so that explicit zero
// values in the file are told apart from absent keys.
type fileConfig struct {
	TrustedProxies         []string `yaml:"trusted_proxies"`
	RateLimit              *int     `yaml:"rate_limit"`
	RateLimitWindowSeconds *int     `yaml:"rate_limit_window_seconds"`
	RetentionDays          *int     `yaml:"retention_days"`
	MessageListLimit       *int     `yaml:"message_list_limit"`
	KeyHashCost            *int     `yaml:"key_hash_cost"`
	MaxPayloadBytes        *int64   `yaml:"max_payload_bytes"`
	LogLevel               *string  `yaml:"log_level"`
	LogFile                *string  `yaml:"log_file"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *ThreadlyConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *ThreadlyConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment. The current
// configuration is kept when the new one fails to load or validate.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *ThreadlyConfig {
	return &ThreadlyConfig{
		TrustedProxies:         []string{},
		RateLimit:              ratelimit.DefaultPolicy.Limit,
		RateLimitWindowSeconds: int(ratelimit.DefaultPolicy.Window / time.Second),
		RetentionDays:          90,
		MessageListLimit:       10,
		KeyHashCost:            bcrypt.DefaultCost,
		MaxPayloadBytes:        1 << 20,
		LogLevel:               applog.DefaultLevel,
		sources:                make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*ThreadlyConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("THREADLY_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "rate_limit", "rate_limit_window_seconds",
		"retention_days", "message_list_limit", "key_hash_cost",
		"max_payload_bytes", "log_level", "log_file",
	}
}

func (c *ThreadlyConfig) applyFileConfig(file *fileConfig) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	setFromFile(c, "rate_limit", &c.RateLimit, file.RateLimit)
	setFromFile(c, "rate_limit_window_seconds", &c.RateLimitWindowSeconds, file.RateLimitWindowSeconds)
	setFromFile(c, "retention_days", &c.RetentionDays, file.RetentionDays)
	setFromFile(c, "message_list_limit", &c.MessageListLimit, file.MessageListLimit)
	setFromFile(c, "key_hash_cost", &c.KeyHashCost, file.KeyHashCost)
	setFromFile(c, "max_payload_bytes", &c.MaxPayloadBytes, file.MaxPayloadBytes)
	setFromFile(c, "log_level", &c.LogLevel, file.LogLevel)
	setFromFile(c, "log_file", &c.LogFile, file.LogFile)
}

func setFromFile[T any](c *ThreadlyConfig, name string, dst *T, src *T) {
	if src == nil {
		return
	}
	*dst = *src
	c.sources[name] = "file"
}

func (c *ThreadlyConfig) applyEnvConfig() error {
	if val := os.Getenv("THREADLY_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"rate_limit", &c.RateLimit},
		{"rate_limit_window_seconds", &c.RateLimitWindowSeconds},
		{"retention_days", &c.RetentionDays},
		{"message_list_limit", &c.MessageListLimit},
		{"key_hash_cost", &c.KeyHashCost},
	}
	for _, attr := range ints {
		val := os.Getenv(envName(attr.name))
		if val == "" {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envName(attr.name), err)
		}
		*attr.dst = i
		c.sources[attr.name] = "environment"
	}

	if val := os.Getenv("THREADLY_MAX_PAYLOAD_BYTES"); val != "" {
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid THREADLY_MAX_PAYLOAD_BYTES: %w", err)
		}
		c.MaxPayloadBytes = i
		c.sources["max_payload_bytes"] = "environment"
	}
	if val := os.Getenv("THREADLY_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.TrimSpace(val)
		c.sources["log_level"] = "environment"
	}
	// LOG_FILE is accepted as the unprefixed legacy name
	for _, name := range []string{"LOG_FILE", "THREADLY_LOG_FILE"} {
		if val := os.Getenv(name); val != "" {
			c.LogFile = val
			c.sources["log_file"] = "environment"
		}
	}
	return nil
}

func envName(attribute string) string {
	return "THREADLY_" + strings.ToUpper(attribute)
}

// ConfigFilePath returns the path to the config file
func (c *ThreadlyConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *ThreadlyConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// RateLimitPolicy returns the configured per-address publish budget
func (c *ThreadlyConfig) RateLimitPolicy() ratelimit.Policy {
	return ratelimit.Policy{
		Limit:  c.RateLimit,
		Window: time.Duration(c.RateLimitWindowSeconds) * time.Second,
	}
}

// RetentionCutoff returns the instant before which messages are considered
// expired, counting RetentionDays back from now.
func (c *ThreadlyConfig) RetentionCutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -c.RetentionDays)
}

// IsTrustedProxy checks if an IP is in the trusted proxy list
func (c *ThreadlyConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if other := net.ParseIP(cidr); other != nil && other.Equal(parsedIP) {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// TrustsForwardedFor reports whether X-Forwarded-For is honoured for a
// request coming from peer. With no trusted_proxies every peer qualifies.
func (c *ThreadlyConfig) TrustsForwardedFor(peer string) bool {
	return len(c.TrustedProxies) == 0 || c.IsTrustedProxy(peer)
}

// Validate validates the configuration
func (c *ThreadlyConfig) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.RateLimitWindowSeconds <= 0 {
		return fmt.Errorf("rate_limit_window_seconds must be positive, got %d", c.RateLimitWindowSeconds)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive, got %d", c.RetentionDays)
	}
	if c.MessageListLimit <= 0 {
		return fmt.Errorf("message_list_limit must be positive, got %d", c.MessageListLimit)
	}
	if c.KeyHashCost < bcrypt.MinCost || c.KeyHashCost > bcrypt.MaxCost {
		return fmt.Errorf("key_hash_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.KeyHashCost)
	}
	if c.MaxPayloadBytes <= 0 {
		return fmt.Errorf("max_payload_bytes must be positive, got %d", c.MaxPayloadBytes)
	}
	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *ThreadlyConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "rate_limit", Value: strconv.Itoa(c.RateLimit), Source: c.Source("rate_limit")},
		{Name: "rate_limit_window_seconds", Value: strconv.Itoa(c.RateLimitWindowSeconds), Source: c.Source("rate_limit_window_seconds")},
		{Name: "retention_days", Value: strconv.Itoa(c.RetentionDays), Source: c.Source("retention_days")},
		{Name: "message_list_limit", Value: strconv.Itoa(c.MessageListLimit), Source: c.Source("message_list_limit")},
		{Name: "key_hash_cost", Value: strconv.Itoa(c.KeyHashCost), Source: c.Source("key_hash_cost")},
		{Name: "max_payload_bytes", Value: strconv.FormatInt(c.MaxPayloadBytes, 10), Source: c.Source("max_payload_bytes")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_file", Value: c.LogFile, Source: c.Source("log_file")},
	}
}

// FormatText returns a text representation of the configuration
func (c *ThreadlyConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *ThreadlyConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
