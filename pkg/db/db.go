package db

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect identifies the database backend selected by the URL scheme.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite3"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Debug enables SQL statement logging. THREADLY_LOG_LEVEL=debug turns it on as well.
	Debug bool
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dialector, err := Dialector(dbURL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless THREADLY_LOG_LEVEL=debug is set
	logMode := logger.Silent
	if cfg.Debug || os.Getenv("THREADLY_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// sqlite allows a single writer; serialize through one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Dialector returns the gorm dialector for a database URL.
func Dialector(dbURL string) (gorm.Dialector, error) {
	dialect, rest, err := Parse(dbURL)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case DialectPostgres:
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	case DialectMySQL:
		return mysql.Open(withQueryParam(rest, "parseTime", "true")), nil
	default:
		return sqlite.Open(withQueryParam(rest, "_foreign_keys", "on")), nil
	}
}

// Parse splits a database URL into its dialect and the driver-specific
// remainder (everything after "scheme://"). Postgres URLs are kept whole.
func Parse(dbURL string) (Dialect, string, error) {
	scheme, rest, ok := strings.Cut(dbURL, "://")
	if !ok {
		return "", "", fmt.Errorf("database URL %q has no scheme", redact(dbURL))
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DialectPostgres, dbURL, nil
	case "mysql", "mariadb":
		return DialectMySQL, rest, nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return "", "", fmt.Errorf("sqlite database URL needs a file path")
		}
		return DialectSQLite, rest, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

func withQueryParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}

// redact hides the password of a URL so it can be put in an error.
func redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
