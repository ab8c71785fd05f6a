package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storekeep/db"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "app.db", cfg.DBPath)
	assert.False(t, cfg.ForeignKeys)
	assert.Equal(t, "validate", cfg.ReferenceCheck)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREKEEP_DB", "/tmp/shop.db")
	t.Setenv("STOREKEEP_FOREIGN_KEYS", "true")
	t.Setenv("STOREKEEP_REFERENCE_CHECK", "trust")
	t.Setenv("STOREKEEP_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shop.db", cfg.DBPath)
	assert.True(t, cfg.ForeignKeys)

	rc, err := cfg.RefCheck()
	require.NoError(t, err)
	assert.Equal(t, db.TrustStore, rc)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoadBadBool(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREKEEP_FOREIGN_KEYS", "maybe")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{DBPath: "app.db", ReferenceCheck: "validate", LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "mixed case reference check", mutate: func(c *Config) { c.ReferenceCheck = " Trust " }},
		{name: "blank path", mutate: func(c *Config) { c.DBPath = "  " }, wantErr: true},
		{name: "unknown reference check", mutate: func(c *Config) { c.ReferenceCheck = "cascade" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
