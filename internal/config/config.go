package config

import (
	"github.com/spf13/viper"
)

// Config holds the service configuration, loaded from the environment with
// sensible defaults for local development.
type Config struct {
	Port              string
	Env               string
	LogLevel          string
	RedisURL          string
	MaxLineups        int
	MaxSimulations    int
	SolverMaxNodes    int
	DefaultRandomness float64
	DefaultEntryFee   float64
	DefaultPayoutMult float64
	CacheTTLHours     int
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8082")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MAX_LINEUPS", 150)
	v.SetDefault("MAX_SIMULATIONS", 100000)
	v.SetDefault("SOLVER_MAX_NODES", 2000000)
	v.SetDefault("DEFAULT_RANDOMNESS", 10.0)
	v.SetDefault("DEFAULT_ENTRY_FEE", 10.0)
	v.SetDefault("DEFAULT_PAYOUT_MULT", 4.5)
	v.SetDefault("CACHE_TTL_HOURS", 24)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		Env:               v.GetString("ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		RedisURL:          v.GetString("REDIS_URL"),
		MaxLineups:        v.GetInt("MAX_LINEUPS"),
		MaxSimulations:    v.GetInt("MAX_SIMULATIONS"),
		SolverMaxNodes:    v.GetInt("SOLVER_MAX_NODES"),
		DefaultRandomness: v.GetFloat64("DEFAULT_RANDOMNESS"),
		DefaultEntryFee:   v.GetFloat64("DEFAULT_ENTRY_FEE"),
		DefaultPayoutMult: v.GetFloat64("DEFAULT_PAYOUT_MULT"),
		CacheTTLHours:     v.GetInt("CACHE_TTL_HOURS"),
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
