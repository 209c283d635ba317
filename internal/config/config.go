package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultDBName is the registry file created in the home directory
const DefaultDBName = ".superpwdhash.db"

// Config holds settings read from the environment or a YAML file.
// The master password is deliberately not part of it.
type Config struct {
	// DBPath is the site registry database. Empty means ~/.superpwdhash.db
	DBPath string `env:"SUPERPWDHASH_DB" yaml:"db"`

	// Environment selects the logger flavour (development or production)
	Environment string `env:"SUPERPWDHASH_ENVIRONMENT" env-default:"production" yaml:"environment"`

	// LogLevel is the minimum zap level written to stderr
	LogLevel string `env:"SUPERPWDHASH_LOG_LEVEL" env-default:"warn" yaml:"logLevel"`

	// Profile names the derivation profile used when --profile is not given
	Profile string `env:"SUPERPWDHASH_PROFILE" env-default:"default" yaml:"profile"`
}

// Load reads configuration from configPath when set, otherwise from the
// environment only. Environment variables override file values.
func Load(configPath string) (*Config, error) {
	var cfg Config

	var err error
	if configPath != "" {
		err = cleanenv.ReadConfig(configPath, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not locate home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, DefaultDBName)
	}

	return &cfg, nil
}
