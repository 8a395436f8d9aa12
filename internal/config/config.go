// Package config defines file-based configuration for the PnL tools.
// Loaded from YAML; operational data like the proxy allowlist and
// system-wallet set is configuration, never hardcoded.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration. Maps directly to the YAML
// file structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Batch   BatchConfig   `yaml:"batch"`
	Stores  StoresConfig  `yaml:"stores"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

// EngineConfig tunes the computation itself.
//
// SystemWallets are protocol contracts rejected outright.
// ProxyAllowlist are proxy contract addresses whose fills attribute to
// the end-user wallet via same-transaction matching.
type EngineConfig struct {
	SystemWallets  []string `yaml:"system_wallets"`
	ProxyAllowlist []string `yaml:"proxy_allowlist"`
	DustThreshold  float64  `yaml:"dust_threshold"`
	MaxDiagnostics int      `yaml:"max_diagnostics"`
}

// BatchConfig bounds batch computation.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// StoresConfig holds backend connection settings.
type StoresConfig struct {
	ClickhouseDSN string      `yaml:"clickhouse_dsn"`
	PostgresDSN   string      `yaml:"postgres_dsn"`
	Gamma         GammaConfig `yaml:"gamma"`
}

// GammaConfig points at the Polymarket metadata API.
type GammaConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads and parses the YAML config at path, applying defaults for
// unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a config with defaults only, for fixture-backed runs.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = 5
	}
	if c.Engine.MaxDiagnostics <= 0 {
		c.Engine.MaxDiagnostics = 50
	}
	if c.Stores.Gamma.BaseURL == "" {
		c.Stores.Gamma.BaseURL = "https://gamma-api.polymarket.com"
	}
	if c.Stores.Gamma.Timeout <= 0 {
		c.Stores.Gamma.Timeout = 10 * time.Second
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}
