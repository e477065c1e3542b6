package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestInitializeConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Matching.ToleranceDays)
	assert.Equal(t, 30, cfg.Matching.MinConfidence)
	assert.Equal(t, 50.0, cfg.Split.MinAmountUSD)
	assert.Equal(t, 50, cfg.Split.MinConfidence)
	assert.Equal(t, "policy.yaml", cfg.Policy.RulesFile)
	assert.Equal(t, 60, cfg.Policy.CacheTTLMinutes)
	assert.Equal(t, "taxrules.yaml", cfg.Tax.RulesFile)
	assert.Equal(t, "transactions.csv", cfg.Data.TransactionsFile)
}

func TestInitializeConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
log:
  level: debug
matching:
  tolerance_days: 7
policy:
  cache_ttl_minutes: 15
`), 0644))

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Matching.ToleranceDays)
	assert.Equal(t, 15, cfg.Policy.CacheTTLMinutes)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30, cfg.Matching.MinConfidence)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Log.Level = "info"
		cfg.Matching.ToleranceDays = 5
		cfg.Matching.MinConfidence = 30
		cfg.Split.MinConfidence = 50
		cfg.Policy.CacheTTLMinutes = 60
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"negative tolerance", func(c *Config) { c.Matching.ToleranceDays = -1 }, true},
		{"confidence over 100", func(c *Config) { c.Matching.MinConfidence = 101 }, true},
		{"split confidence negative", func(c *Config) { c.Split.MinConfidence = -5 }, true},
		{"zero cache ttl", func(c *Config) { c.Policy.CacheTTLMinutes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
