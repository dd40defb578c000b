// Package config loads threadly settings.
//
// Settings come from $THREADLY_CONFIG_PATH/threadly.yml (default
// /etc/threadly/threadly.yml) and THREADLY_* environment variables, with
// the environment winning. Each attribute remembers whether its value is a
// default, came from the file or came from the environment.
//
// # Key Configuration Options
//
//   - THREADLY_RATE_LIMIT, THREADLY_RATE_LIMIT_WINDOW_SECONDS: publish budget per address
//   - THREADLY_TRUSTED_PROXIES: peers allowed to set X-Forwarded-For
//   - THREADLY_RETENTION_DAYS: default cleanup cutoff
//   - THREADLY_LOG_LEVEL, LOG_FILE: application logging
//
// DATABASE_URL, PORT and BIND_ADDRESS are read directly by the commands
// that need them.
package config
