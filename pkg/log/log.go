package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

var (
	mu      sync.RWMutex
	current = zap.NewNop()
)

// ParseLevel converts a configured level name into a zap level. An empty
// name means DefaultLevel.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = DefaultLevel
	}
	return zapcore.ParseLevel(strings.ToLower(level))
}

// New builds a JSON logger writing to stderr and, when file is non-empty,
// appending to file as well.
func New(level, file string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	sinks := []zapcore.WriteSyncer{zapcore.Lock(consoleSink{os.Stderr})}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", file, err)
		}
		sinks = append(sinks, zapcore.Lock(f))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller()), nil
}

// consoleSink never syncs. Pipes and character devices reject fsync.
type consoleSink struct {
	io.Writer
}

func (consoleSink) Sync() error { return nil }

// Setup builds the process logger and installs it as the global one.
func Setup(level, file string) (*zap.Logger, error) {
	logger, err := New(level, file)
	if err != nil {
		return nil, err
	}
	Set(logger)
	return logger, nil
}

// Set replaces the global logger.
func Set(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	current = logger
	mu.Unlock()
}

// Get returns the global logger. It is a no-op logger until Setup or Set.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithComponent returns the global logger tagged with a component name.
func WithComponent(name string) *zap.Logger {
	return Get().With(zap.String("component", name))
}

// Writer adapts logger into an io.Writer that emits one entry per line
// written, at the given level.
func Writer(logger *zap.Logger, level zapcore.Level) *zapio.Writer {
	return &zapio.Writer{Log: logger, Level: level}
}
