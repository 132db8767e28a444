package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_LINEUPS", "25")
	t.Setenv("DEFAULT_RANDOMNESS", "15.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 25, cfg.MaxLineups)
	assert.InDelta(t, 15.5, cfg.DefaultRandomness, 0.001)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "8082")
	t.Setenv("ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 2000000, cfg.SolverMaxNodes)
	assert.Equal(t, 100000, cfg.MaxSimulations)
	assert.Equal(t, 24, cfg.CacheTTLHours)
	assert.InDelta(t, 4.5, cfg.DefaultPayoutMult, 0.001)
}
