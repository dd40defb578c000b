// Package log owns the process-wide zap logger.
//
// Setup is called once by the server command with the configured level and
// optional log file. Packages take a *zap.Logger explicitly where they can
// and fall back to Get or WithComponent otherwise.
package log
