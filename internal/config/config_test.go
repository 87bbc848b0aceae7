package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)

	// Tier boundaries and verdict thresholds come from one config value.
	assert.Equal(t, 0.45, cfg.Analysis.TierCore)
	assert.Equal(t, 0.35, cfg.Analysis.TierStrong)
	assert.Equal(t, 0.25, cfg.Analysis.TierRelated)
	assert.Equal(t, 0.15, cfg.Analysis.TierAdjacent)
	assert.Equal(t, 7.5, cfg.Analysis.VerdictStrong)
	assert.Equal(t, 5.0, cfg.Analysis.VerdictMixed)
	assert.Equal(t, 4.0, cfg.Analysis.VerdictWeak)

	// Market-sizing defaults.
	assert.Equal(t, "Global", cfg.Analysis.DefaultGeography)
	assert.Equal(t, 29.0, cfg.Analysis.DefaultPrice)
	assert.Equal(t, 1000000.0, cfg.Analysis.DefaultMSC)
}

func TestLoad_DimensionWeightsSumToOne(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	sum := cfg.Analysis.PainWeight + cfg.Analysis.MarketWeight +
		cfg.Analysis.CompetitionWeight + cfg.Analysis.TimingWeight
	assert.InDelta(t, 1.0, sum, 0.0001)
	assert.Equal(t, 0.25, cfg.Analysis.MarketWeight)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VALIDATE_LOG_LEVEL", "debug")
	t.Setenv("VALIDATE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "console"})
	assert.NoError(t, err)
}
