// Package triplog persists the trips of simulation runs so that they can be
// inspected after the process exits.
package triplog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// Query filters stored trips. Zero fields match everything.
type Query struct {
	RunID     string
	VehicleID string
	Load      string
	// Start and End bound the departure time, inclusive.
	Start time.Time
	End   time.Time
}

// Match reports whether t satisfies q.
func (q Query) Match(t model.Trip) bool {
	if q.RunID != "" && t.RunID != q.RunID {
		return false
	}
	if q.VehicleID != "" && t.VehicleID != q.VehicleID {
		return false
	}
	if q.Load != "" && t.Load.String() != q.Load {
		return false
	}
	if !q.Start.IsZero() && t.Departure.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && t.Departure.After(q.End) {
		return false
	}
	return true
}

// Store persists trips.
type Store interface {
	Append(ctx context.Context, trips ...model.Trip) error
	Query(ctx context.Context, q Query) ([]model.Trip, error)
	Close() error
}

// Config selects and configures the trip store.
type Config struct {
	// Backend is "jsonl", "sqlite" or empty to disable persistence.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills rotation settings.
func (c *Config) SetDefaults() {
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 50
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

// Validate checks the backend name and path.
func (c Config) Validate() error {
	switch c.Backend {
	case "":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("triplog: path required for %s backend", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("triplog: unknown backend %q", c.Backend)
	}
}

// Open creates the configured store. It returns nil when persistence is
// disabled.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, nil
	}
}
