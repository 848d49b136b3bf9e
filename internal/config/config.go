// Package config loads d6calc settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	DBPath     string `env:"D6CALC_DB"`
	Journal    bool   `env:"D6CALC_JOURNAL" envDefault:"true"`
	LatestOnly bool   `env:"D6CALC_LATEST_ONLY"`
	Addr       string `env:"D6CALC_ADDR" envDefault:":8080"`
	Compute    Compute
}

// Compute selects and tunes the computation service transport.
type Compute struct {
	// URL is the base URL of an HTTP compute service.
	URL string `env:"D6CALC_COMPUTE_URL"`
	// Command is a command line run once per request.
	Command string `env:"D6CALC_COMPUTE_CMD"`
	// Timeout bounds a single call. Zero waits forever.
	Timeout   time.Duration `env:"D6CALC_COMPUTE_TIMEOUT" envDefault:"0s"`
	CacheSize int           `env:"D6CALC_CACHE_SIZE" envDefault:"0"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DefaultDBPath is the journal location when none is configured.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".d6calc", "journal.db")
}
