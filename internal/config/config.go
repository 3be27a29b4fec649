// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration. Command-line flags override it.
type Config struct {
	DBPath  string `env:"DIAMONDBASE_DB"   envDefault:"diamondbase.sqlite3"`
	Addr    string `env:"DIAMONDBASE_ADDR" envDefault:":8080"`
	LogPath string `env:"DIAMONDBASE_LOG"`

	// DeployerPassword is used for the deployer account on first run. A
	// random password is generated when it is empty.
	DeployerPassword string `env:"DIAMONDBASE_DEPLOYER_PASSWORD"`

	ShutdownTimeout time.Duration `env:"DIAMONDBASE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("shutdown timeout must be positive")
	}
	return cfg, nil
}
