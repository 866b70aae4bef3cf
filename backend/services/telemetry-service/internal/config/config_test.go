package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "8088")
	t.Setenv("DATABASE_URL", "postgres://plts@localhost/plts")
	t.Setenv("PLTS_TIMEZONE", "Asia/Jakarta")
	t.Setenv("PLTS_PEAK_HORIZON", "today")
	t.Setenv("PLTS_CORS_ORIGINS", "https://plts.example")
	t.Setenv("PLTS_HUB_QUEUE_SIZE", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8088", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "today", cfg.Metrics.PeakHorizon)
	assert.Equal(t, []string{"https://plts.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 4, cfg.Hub.QueueSize)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":3000", cfg.HTTPAddress())
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout())
	assert.Equal(t, 30*time.Second, cfg.PingInterval())
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout())
	assert.Equal(t, 80, cfg.Metrics.BatteryHealth)

	cfg.HTTP.Port = ":9000"
	cfg.Store.TimeoutSeconds = 0
	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"postgres without dsn": func(c *Config) {},
		"unknown driver":       func(c *Config) { c.Database.Driver = "mongo" },
		"bad timezone":         func(c *Config) { c.Database.Driver = DriverMemory; c.Metrics.Timezone = "Mars/Olympus" },
		"local timezone":       func(c *Config) { c.Database.Driver = DriverMemory; c.Metrics.Timezone = "Local" },
		"bad horizon":          func(c *Config) { c.Database.Driver = DriverMemory; c.Metrics.PeakHorizon = "week" },
		"auth without secret":  func(c *Config) { c.Database.Driver = DriverMemory; c.Auth.Enabled = true },
		"mqtt without topic":   func(c *Config) { c.Database.Driver = DriverMemory; c.MQTT.Broker = "tcp://b:1883"; c.MQTT.Topic = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}

	cfg := Default()
	cfg.Database.Driver = DriverMemory
	assert.NoError(t, cfg.Validate())
}
