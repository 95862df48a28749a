package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "bim.db", cfg.Store.Path)
	assert.Equal(t, "US", cfg.Analysis.Country)
	assert.Equal(t, "moderate", cfg.Analysis.Scenario)
	assert.Equal(t, 5, cfg.Analysis.HorizonYears)
	assert.True(t, cfg.Analysis.IncludeOffsets)
	assert.True(t, cfg.Analysis.IncludePersistence)
	assert.True(t, cfg.Analysis.IncludeEvents)
	assert.Equal(t, 1000, cfg.PSA.Iterations)
	assert.Equal(t, int64(42), cfg.PSA.Seed)
	assert.InDelta(t, 0.95, cfg.PSA.Confidence, 0.001)
	assert.Equal(t, 4, cfg.PSA.Workers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/bim
analysis:
  country: DE
  scenario: optimistic
  horizon_years: 8
psa:
  iterations: 500
  seed: 7
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/bim", cfg.Store.DatabaseURL)
	assert.Equal(t, "DE", cfg.Analysis.Country)
	assert.Equal(t, "optimistic", cfg.Analysis.Scenario)
	assert.Equal(t, 8, cfg.Analysis.HorizonYears)
	assert.Equal(t, 500, cfg.PSA.Iterations)
	assert.Equal(t, int64(7), cfg.PSA.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 0.95, cfg.PSA.Confidence, 0.001)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("BIM_ANALYSIS_COUNTRY", "UK")
	t.Setenv("BIM_PSA_ITERATIONS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "UK", cfg.Analysis.Country)
	assert.Equal(t, 250, cfg.PSA.Iterations)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}
