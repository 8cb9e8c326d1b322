package logger

import corelogger "github.com/kilianp07/shuttle/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// Config controls log level, format and destination.
type Config struct {
	// Level is a zerolog level name. Defaults to "info".
	Level string `json:"level"`
	// Format is "json" or "console". Empty selects console when APP_ENV=dev.
	Format string `json:"format"`
	// File, when set, receives logs through a size rotated writer.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// New returns a Logger for the given component using the process-wide
// configuration installed by Setup. The environment is detected via the
// APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
