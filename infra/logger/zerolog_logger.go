package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	level            = zerolog.InfoLevel
	format string
)

// Setup installs cfg as the configuration of every logger created afterwards.
// It returns a closer for the rotated log file, if any.
func Setup(cfg Config) (io.Closer, error) {
	lvl := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		lvl = l
	}
	switch cfg.Format {
	case "", "json", "console":
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w, closer = lj, lj
	}
	mu.Lock()
	output, level, format = w, lvl, cfg.Format
	mu.Unlock()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger writing to the configured output.
// All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	w, lvl, f := output, level, format
	mu.RUnlock()
	return newZerolog(w, lvl, f, component)
}

func newZerolog(w io.Writer, lvl zerolog.Level, f, component string) *ZerologLogger {
	if f == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		f = "console"
	}
	if f == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
