package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	libconfig "pltsmonitor/backend/libs/config"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultPort = "3000"
)

// Config defines telemetry service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Hub      HubConfig      `yaml:"hub"`
	WS       WSConfig       `yaml:"websocket"`
	Auth     AuthConfig     `yaml:"auth"`
	Ingest   IngestConfig   `yaml:"ingest"`
	CORS     CORSConfig     `yaml:"cors"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"PLTS_DB_DRIVER"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

type StoreConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds" env:"PLTS_STORE_TIMEOUT"`
}

type MetricsConfig struct {
	Timezone      string `yaml:"timezone" env:"PLTS_TIMEZONE"`
	PeakHorizon   string `yaml:"peakHorizon" env:"PLTS_PEAK_HORIZON"`
	BatteryHealth int    `yaml:"batteryHealth" env:"PLTS_BATTERY_HEALTH"`
}

type HubConfig struct {
	QueueSize int `yaml:"queueSize" env:"PLTS_HUB_QUEUE_SIZE"`
}

type WSConfig struct {
	PingIntervalSeconds int `yaml:"pingIntervalSeconds" env:"PLTS_WS_PING_INTERVAL"`
	WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"PLTS_WS_WRITE_TIMEOUT"`
}

type AuthConfig struct {
	Enabled    bool   `yaml:"enabled" env:"PLTS_AUTH_ENABLED"`
	JWTSecret  string `yaml:"jwtSecret" env:"PLTS_JWT_SECRET"`
	CookieName string `yaml:"cookieName" env:"PLTS_AUTH_COOKIE"`
}

type IngestConfig struct {
	// DeviceKeyHash is a bcrypt hash; when set, device routes require X-Device-Key.
	DeviceKeyHash string `yaml:"deviceKeyHash" env:"PLTS_DEVICE_KEY_HASH"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins" env:"PLTS_CORS_ORIGINS"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	Channel  string `yaml:"channel" env:"PLTS_REDIS_CHANNEL"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker" env:"MQTT_BROKER"`
	Topic    string `yaml:"topic" env:"PLTS_MQTT_TOPIC"`
	ClientID string `yaml:"clientId" env:"PLTS_MQTT_CLIENT_ID"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTP:     HTTPConfig{Port: defaultPort},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Store:    StoreConfig{TimeoutSeconds: 5},
		Metrics: MetricsConfig{
			Timezone:      "UTC",
			PeakHorizon:   "latest",
			BatteryHealth: 80,
		},
		Hub: HubConfig{QueueSize: 16},
		WS: WSConfig{
			PingIntervalSeconds: 30,
			WriteTimeoutSeconds: 10,
		},
		Auth:  AuthConfig{CookieName: "plts_token"},
		CORS:  CORSConfig{AllowedOrigins: []string{"*"}},
		Redis: RedisConfig{Channel: "plts:tracker"},
		MQTT: MQTTConfig{
			Topic:    "plts/tracker",
			ClientID: "plts-telemetry",
		},
	}
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("database dsn required for postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Metrics.PeakHorizon {
	case "", "latest", "today":
	default:
		return fmt.Errorf("unknown peak horizon %q", c.Metrics.PeakHorizon)
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth enabled but jwt secret is empty")
	}
	if c.MQTT.Broker != "" && strings.TrimSpace(c.MQTT.Topic) == "" {
		return errors.New("mqtt topic required when broker is set")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Location resolves the time zone calendar days are cut in.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Metrics.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	if strings.EqualFold(name, "Local") {
		return nil, errors.New("timezone Local is not supported, use an IANA name such as Asia/Jakarta")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// StoreTimeout bounds each store round trip.
func (c *Config) StoreTimeout() time.Duration {
	if c.Store.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// PingInterval returns websocket ping interval.
func (c *Config) PingInterval() time.Duration {
	if c.WS.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingIntervalSeconds) * time.Second
}

// WriteTimeout returns websocket write timeout.
func (c *Config) WriteTimeout() time.Duration {
	if c.WS.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WS.WriteTimeoutSeconds) * time.Second
}
