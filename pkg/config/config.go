package config

import (
	"runtime"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/logger"
	"github.com/ajitpratap0/colkit/pkg/observability"
)

// Config is the single configuration structure for colkit. Every section has
// usable defaults, so a zero file loads to Default().
type Config struct {
	Map           MapConfig            `yaml:"map" json:"map"`
	Display       DisplayConfig        `yaml:"display" json:"display"`
	Sampling      SamplingConfig       `yaml:"sampling" json:"sampling"`
	Cells         CellsConfig          `yaml:"cells" json:"cells"`
	Logging       logger.Config        `yaml:"logging" json:"logging"`
	Observability observability.Config `yaml:"observability" json:"observability"`
}

// MapConfig holds the defaults for map, filter and batch runs
type MapConfig struct {
	BatchSize     int  `yaml:"batch_size" json:"batch_size"`
	Workers       int  `yaml:"workers" json:"workers"`
	DropLastBatch bool `yaml:"drop_last_batch" json:"drop_last_batch"`
	// Materialize loads cell contents before they reach the function
	Materialize bool `yaml:"materialize" json:"materialize"`
}

// DisplayConfig controls how columns render
type DisplayConfig struct {
	MaxRows   int `yaml:"max_rows" json:"max_rows"`
	MaxWidth  int `yaml:"max_width" json:"max_width"`
	Precision int `yaml:"precision" json:"precision"`
}

// SamplingConfig holds the default sampling seed. Zero means unseeded.
type SamplingConfig struct {
	Seed uint64 `yaml:"seed" json:"seed"`
}

// CellsConfig controls lazy cell loading
type CellsConfig struct {
	// Root is prepended to relative file cell paths
	Root string `yaml:"root" json:"root"`
	// CacheBytes bounds the materialized cell cache; zero disables it
	CacheBytes int64 `yaml:"cache_bytes" json:"cache_bytes"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Map: MapConfig{
			BatchSize:   1,
			Workers:     0,
			Materialize: true,
		},
		Display: DisplayConfig{
			MaxRows:   10,
			MaxWidth:  80,
			Precision: -1,
		},
		Cells: CellsConfig{
			CacheBytes: 64 << 20,
		},
		Logging: logger.Config{
			Level:       "warn",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
		Observability: observability.DefaultConfig(),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Map.BatchSize < 1 {
		return errors.Newf(errors.ErrorTypeConfig, "map.batch_size must be positive, got %d", c.Map.BatchSize)
	}
	if c.Map.Workers < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "map.workers must not be negative, got %d", c.Map.Workers)
	}
	if c.Display.MaxRows < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "display.max_rows must not be negative, got %d", c.Display.MaxRows)
	}
	if c.Display.MaxWidth < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "display.max_width must not be negative, got %d", c.Display.MaxWidth)
	}
	if c.Cells.CacheBytes < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "cells.cache_bytes must not be negative, got %d", c.Cells.CacheBytes)
	}
	if r := c.Observability.SamplingRate; r < 0 || r > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "observability.sampling_rate must be in [0, 1], got %g", r)
	}
	switch c.Observability.Exporter {
	case "", "none", "stdout":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown observability.exporter %q", c.Observability.Exporter)
	}
	return nil
}

// GetWorkers returns the effective number of map workers. Zero means one per
// CPU.
func (c *Config) GetWorkers() int {
	if c.Map.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Map.Workers
}
