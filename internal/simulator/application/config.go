package application

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UnitRange is the synthesis range for a known unit label.
type UnitRange struct {
	Min      float64
	Max      float64
	Decimals int
}

// Config defines simulator tuning.
type Config struct {
	TickInterval     time.Duration
	FallbackMargin   float64
	FallbackDecimals int
	Units            map[string]UnitRange
}

type fileUnitRange struct {
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Decimals int     `yaml:"decimals"`
}

type fileConfig struct {
	TickInterval     string                   `yaml:"tick_interval"`
	FallbackMargin   *float64                 `yaml:"fallback_margin"`
	FallbackDecimals *int                     `yaml:"fallback_decimals"`
	Units            map[string]fileUnitRange `yaml:"units"`
}

// LoadConfig loads simulator config from defaults, an optional yaml file
// (SIM_CONFIG), and env overrides, in that order.
func LoadConfig() (Config, error) {
	cfg := Config{
		TickInterval:     2 * time.Second,
		FallbackMargin:   5,
		FallbackDecimals: 2,
		Units: map[string]UnitRange{
			"°C":  {Min: 10, Max: 70, Decimals: 1},
			"bar": {Min: 0.8, Max: 2.5, Decimals: 2},
			"%":   {Min: 0, Max: 100, Decimals: 0},
		},
	}

	if path := os.Getenv("SIM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, err
		}
		if file.TickInterval != "" {
			parsed, err := time.ParseDuration(file.TickInterval)
			if err != nil {
				return cfg, err
			}
			cfg.TickInterval = parsed
		}
		if file.FallbackMargin != nil {
			cfg.FallbackMargin = *file.FallbackMargin
		}
		if file.FallbackDecimals != nil {
			cfg.FallbackDecimals = *file.FallbackDecimals
		}
		for unit, r := range file.Units {
			cfg.Units[unit] = UnitRange{Min: r.Min, Max: r.Max, Decimals: r.Decimals}
		}
	}

	if value := os.Getenv("SIM_TICK_INTERVAL"); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return cfg, err
		}
		cfg.TickInterval = parsed
	}

	return cfg, cfg.Validate()
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.New("simulator config: tick interval must be positive")
	}
	if c.FallbackMargin < 0 {
		return errors.New("simulator config: fallback margin must not be negative")
	}
	for unit, r := range c.Units {
		if r.Min >= r.Max {
			return errors.New("simulator config: range min must be below max for unit " + unit)
		}
		if r.Decimals < 0 {
			return errors.New("simulator config: decimals must not be negative for unit " + unit)
		}
	}
	return nil
}
