// Package source reads the cleaned, time-ordered shipment sequence fed to the
// simulation.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/shuttle/core/model"
)

// Config locates the input sequence.
type Config struct {
	Path string `json:"path"`
	// Format is "csv", "yaml" or "json". Empty infers it from the extension.
	Format string `json:"format"`
}

// Validate checks that a path is set and the format is known.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("source: path is required")
	}
	_, err := c.format()
	return err
}

func (c Config) format() (string, error) {
	f := strings.ToLower(c.Format)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Path)), ".")
	}
	switch f {
	case "csv", "json":
		return f, nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("source: unsupported format %q", f)
	}
}

// Load reads the sequence described by cfg.
func Load(cfg Config) ([]model.Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	format, _ := cfg.format()
	evs, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.Path, err)
	}
	return evs, nil
}

// Read decodes events from r in the given format.
func Read(r io.Reader, format string) ([]model.Event, error) {
	switch format {
	case "csv":
		return ReadCSV(r)
	case "json":
		return ReadJSON(r)
	case "yaml", "yml":
		return ReadYAML(r)
	default:
		return nil, fmt.Errorf("source: unsupported format %q", format)
	}
}

type document struct {
	Events []model.Event `json:"events" yaml:"events"`
}

// ReadYAML decodes a document with a top-level events list.
func ReadYAML(r io.Reader) ([]model.Event, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return doc.Events, nil
}

// ReadJSON decodes either a bare array of events or an object with an events
// field.
func ReadJSON(r io.Reader) ([]model.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var evs []model.Event
		if err := json.Unmarshal(data, &evs); err != nil {
			return nil, err
		}
		return evs, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Events, nil
}
