package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SIM_CONFIG", "")
	t.Setenv("SIM_TICK_INTERVAL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Fatalf("expected 2s tick, got %s", cfg.TickInterval)
	}
	if cfg.FallbackMargin != 5 {
		t.Fatalf("expected margin 5, got %v", cfg.FallbackMargin)
	}
	temp, ok := cfg.Units["°C"]
	if !ok {
		t.Fatal("expected °C range")
	}
	if temp.Min != 10 || temp.Max != 70 || temp.Decimals != 1 {
		t.Fatalf("unexpected °C range: %+v", temp)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulator.yaml")
	content := `tick_interval: 500ms
fallback_margin: 3
units:
  "°C":
    min: 20
    max: 60
    decimals: 1
  "rpm":
    min: 0
    max: 3000
    decimals: 0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("SIM_CONFIG", path)
	t.Setenv("SIM_TICK_INTERVAL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("expected 500ms tick, got %s", cfg.TickInterval)
	}
	if cfg.FallbackMargin != 3 {
		t.Fatalf("expected margin 3, got %v", cfg.FallbackMargin)
	}
	if temp := cfg.Units["°C"]; temp.Min != 20 || temp.Max != 60 {
		t.Fatalf("expected °C override, got %+v", temp)
	}
	if rpm := cfg.Units["rpm"]; rpm.Max != 3000 {
		t.Fatalf("expected rpm range, got %+v", rpm)
	}
	// Unmentioned units keep their defaults.
	if bar := cfg.Units["bar"]; bar.Min != 0.8 || bar.Max != 2.5 {
		t.Fatalf("expected default bar range, got %+v", bar)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulator.yaml")
	if err := os.WriteFile(path, []byte("tick_interval: 10s\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("SIM_CONFIG", path)
	t.Setenv("SIM_TICK_INTERVAL", "250ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected env override 250ms, got %s", cfg.TickInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, true},
		{"negative margin", func(c *Config) { c.FallbackMargin = -1 }, true},
		{"inverted unit range", func(c *Config) {
			c.Units["°C"] = UnitRange{Min: 70, Max: 10, Decimals: 1}
		}, true},
		{"negative decimals", func(c *Config) {
			c.Units["°C"] = UnitRange{Min: 10, Max: 70, Decimals: -1}
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultGeneratorConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
