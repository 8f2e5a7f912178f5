// Package config loads tool configuration by layering defaults, an optional
// YAML file, and environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the runtime settings of the tool.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `koanf:"db_path"`
	// Workers bounds the pool used for multi-group batch replays.
	Workers int `koanf:"workers"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DBPath:   filepath.Join(home, ".jasstat", "jasstat.db"),
		Workers:  4,
		LogLevel: "info",
	}
}

// Load builds a Config by layering (low -> high):
//  1. defaults
//  2. YAML file if JASSTAT_CONFIG is set
//  3. env vars with prefix JASSTAT_ (JASSTAT_DB_PATH, JASSTAT_WORKERS, ...)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("JASSTAT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("JASSTAT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "jasstat_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
