// Package config loads the application configuration from a YAML or JSON
// file with K_ prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/shuttle/core/dispatch"
	"github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/sweep"
	"github.com/kilianp07/shuttle/core/triplog"
	"github.com/kilianp07/shuttle/infra/logger"
	"github.com/kilianp07/shuttle/infra/source"
	"github.com/kilianp07/shuttle/pkg/export"
)

type Config struct {
	Simulation dispatch.Config `json:"simulation"`
	Input      source.Config   `json:"input"`
	Output     export.Config   `json:"output"`
	TripLog    triplog.Config  `json:"triplog"`
	Metrics    metrics.Config  `json:"metrics"`
	Sweep      sweep.Config    `json:"sweep"`
	Logging    logger.Config   `json:"logging"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{Simulation: dispatch.DefaultConfig()}
}

// Load reads path, applies environment overrides such as
// K_SIMULATION__TOTAL_STEPS=500 and validates the result. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Simulation.SetDefaults()
	cfg.TripLog.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. The simulation section is validated in
// full only when total_steps is set; otherwise it is checked again once the
// input length is known.
func (c Config) Validate() error {
	if c.Simulation.TotalSteps > 0 {
		if err := c.Simulation.Validate(); err != nil {
			return err
		}
	}
	if c.Input.Path != "" {
		if err := c.Input.Validate(); err != nil {
			return err
		}
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.TripLog.Validate(); err != nil {
		return err
	}
	return c.Sweep.Validate()
}
