package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"storekeep/db"
)

// Config holds the startup settings. Every field has a default, so an empty
// environment reproduces the plain behaviour: ./app.db, foreign keys off.
type Config struct {
	DBPath         string `env:"STOREKEEP_DB"              envDefault:"app.db"`
	ReferenceCheck string `env:"STOREKEEP_REFERENCE_CHECK" envDefault:"validate"`
	LogLevel       string `env:"STOREKEEP_LOG_LEVEL"       envDefault:"warn"`
	ForeignKeys    bool   `env:"STOREKEEP_FOREIGN_KEYS"    envDefault:"false"`
}

// Load reads an optional .env file from the working directory, then the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that the environment or flags may have mangled.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("database path is required")
	}
	if _, err := c.RefCheck(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// RefCheck maps ReferenceCheck onto the storage setting.
func (c Config) RefCheck() (db.ReferenceCheck, error) {
	switch strings.ToLower(strings.TrimSpace(c.ReferenceCheck)) {
	case "validate":
		return db.ValidateOnWrite, nil
	case "trust":
		return db.TrustStore, nil
	default:
		return 0, fmt.Errorf("unknown reference check %q (want validate or trust)", c.ReferenceCheck)
	}
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
