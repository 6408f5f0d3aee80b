// Package config loads docsearch settings from an optional TOML file and
// DOCSEARCH_* environment variables, in that order of precedence (the
// environment wins).
package config

import (
	"errors"
	"fmt"
	"time"

	"docsearch/internal/doxygen"
	"docsearch/internal/logger"
	"docsearch/internal/query"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v7"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCSEARCH_"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of settings.
type Config struct {
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
	Category string `toml:"category" env:"CATEGORY"`
	Strict   bool   `toml:"strict" env:"STRICT"`

	Search SearchConfig `toml:"search" envPrefix:"SEARCH_"`
	Cache  CacheConfig  `toml:"cache" envPrefix:"CACHE_"`
	HTTP   HTTPConfig   `toml:"http" envPrefix:"HTTP_"`
	Watch  WatchConfig  `toml:"watch" envPrefix:"WATCH_"`
	SQLite SQLiteConfig `toml:"sqlite" envPrefix:"SQLITE_"`
}

// SearchConfig tunes the query service.
type SearchConfig struct {
	Limit int `toml:"limit" env:"LIMIT"`
}

// CacheConfig locates index snapshots.
type CacheConfig struct {
	Dir      string `toml:"dir" env:"DIR"`
	Disabled bool   `toml:"disabled" env:"DISABLED"`
}

// HTTPConfig configures the search server.
type HTTPConfig struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// WatchConfig controls rebuilding when the documentation changes.
type WatchConfig struct {
	Enabled  bool          `toml:"enabled" env:"ENABLED"`
	Debounce time.Duration `toml:"debounce" env:"DEBOUNCE"`
}

// SQLiteConfig names the export database.
type SQLiteConfig struct {
	Path string `toml:"path" env:"PATH"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Category: doxygen.DefaultCategory,
		Search:   SearchConfig{Limit: query.DefaultLimit},
		Cache:    CacheConfig{Dir: "tmp/.dscache"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Watch:    WatchConfig{Enabled: true, Debounce: 500 * time.Millisecond},
		SQLite:   SQLiteConfig{Path: "docsearch.db"},
	}
}

// Load applies the TOML file at path (skipped when path is empty) and the
// process environment on top of the defaults.
func Load(path string) (Config, error) {
	return load(path, env.Options{Prefix: EnvPrefix})
}

func load(path string, opts env.Options) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q: %v", ErrInvalidConfig, c.LogLevel, err)
	}
	if c.Category == "" {
		return fmt.Errorf("%w: category must be non-empty", ErrInvalidConfig)
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("%w: search.limit must be >= 0 (got %d)", ErrInvalidConfig, c.Search.Limit)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must be >= 0 (got %s)", ErrInvalidConfig, c.Watch.Debounce)
	}
	return nil
}
