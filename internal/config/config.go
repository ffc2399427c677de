// Package config loads runtime configuration from TOML.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	Store StoreConfig `toml:"store"`
	Pool  PoolConfig  `toml:"pool"`
	Log   LogConfig   `toml:"log"`
}

// StoreConfig selects and locates the genomic library backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite" or "badger".
	Backend string `toml:"backend"`
	// Path is the database file (sqlite) or directory (badger).
	Path string `toml:"path"`
}

// PoolConfig tunes the gene pool cache.
type PoolConfig struct {
	Capacity      int     `toml:"capacity"`
	PurgeFraction float64 `toml:"purge_fraction"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{Backend: "memory"},
		Pool:  PoolConfig{Capacity: 4096, PurgeFraction: 0.25},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads a TOML configuration file, filling unset fields from
// Default. A missing file is not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "", "memory", "sqlite", "badger":
	default:
		return fmt.Errorf("config: unsupported store backend %q", c.Store.Backend)
	}
	if (c.Store.Backend == "sqlite" || c.Store.Backend == "badger") && c.Store.Path == "" {
		return fmt.Errorf("config: backend %q requires a path", c.Store.Backend)
	}
	if c.Pool.Capacity < 0 {
		return fmt.Errorf("config: negative pool capacity %d", c.Pool.Capacity)
	}
	if c.Pool.PurgeFraction < 0 || c.Pool.PurgeFraction > 1 {
		return fmt.Errorf("config: purge fraction %v out of [0,1]", c.Pool.PurgeFraction)
	}
	return nil
}
