// Package daemon manages the Holdfast daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds all daemon configuration. Values load in three layers:
// defaults, then ~/.holdfast/config.toml, then HOLDFAST_* environment
// variables.
type Config struct {
	Node      NodeConfig      `toml:"node" envPrefix:"HOLDFAST_NODE_"`
	API       APIConfig       `toml:"api" envPrefix:"HOLDFAST_API_"`
	Escrow    EscrowConfig    `toml:"escrow" envPrefix:"HOLDFAST_ESCROW_"`
	Logging   LoggingConfig   `toml:"logging" envPrefix:"HOLDFAST_LOG_"`
	Telemetry TelemetryConfig `toml:"telemetry" envPrefix:"HOLDFAST_TELEMETRY_"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	ID string `toml:"id" env:"ID"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`
}

// EscrowConfig controls the settlement engine.
type EscrowConfig struct {
	MinTaskPayment  int64  `toml:"min_task_payment" env:"MIN_TASK_PAYMENT"`
	MinReviewBounty int64  `toml:"min_review_bounty" env:"MIN_REVIEW_BOUNTY"`
	TreasuryOwner   string `toml:"treasury_owner" env:"TREASURY_OWNER"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	File string `toml:"file" env:"FILE"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"PROMETHEUS"`
}

// DefaultConfig returns a sensible default configuration. The treasury owner
// is unset by default, which leaves withdrawals disabled until an operator
// configures one.
func DefaultConfig() Config {
	homeDir := holdfastHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7410,
		},
		Escrow: EscrowConfig{
			MinTaskPayment:  1000,
			MinReviewBounty: 500,
		},
		Logging: LoggingConfig{
			File: filepath.Join(homeDir, "holdfast.log"),
		},
	}
}

// LoadConfig reads config from ~/.holdfast/config.toml, falling back to
// defaults, then applies environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(holdfastHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.holdfast/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(holdfastHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// holdfastHome returns the Holdfast data directory.
func holdfastHome() string {
	if env := os.Getenv("HOLDFAST_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".holdfast")
}

// HoldfastHome is exported for use by other packages.
func HoldfastHome() string {
	return holdfastHome()
}
