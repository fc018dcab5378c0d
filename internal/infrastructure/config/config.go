package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for hookbot.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Chat     ChatConfig     `yaml:"chat"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Webhooks WebhooksConfig `yaml:"webhooks"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ChatConfig contains the bot's chat identity.
type ChatConfig struct {
	Nick      string   `yaml:"nick"`
	Channels  []string `yaml:"channels"`
	Operators []string `yaml:"operators"`
}

// MQTTConfig contains MQTT broker connection settings for the chat bus.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// WebhooksConfig contains HTTP webhook service settings.
type WebhooksConfig struct {
	Port      int  `yaml:"port"`
	Autostart bool `yaml:"autostart"`
	// Enabled is the extension allow-list. A nil list loads every
	// discovered extension; an explicit empty list loads none.
	Enabled     []string             `yaml:"enabled"`
	Credentials []CredentialConfig   `yaml:"credentials"`
	Timeouts    WebhookTimeoutConfig `yaml:"timeouts"`
	RateLimit   RateLimitConfig      `yaml:"rate_limit"`
}

// CredentialConfig is a single user/password pair accepted by
// authenticated webhook routes.
type CredentialConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// WebhookTimeoutConfig contains HTTP timeout settings.
type WebhookTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// RateLimitConfig contains rate limiting settings for the webhook service.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// DatabaseConfig contains SQLite database settings for the message log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for request metrics.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing config file is not an error: the bot runs on defaults plus
// environment overrides, which covers containerised deployments.
//
// Environment variables follow the pattern: HOOKBOT_SECTION_KEY
// For example: HOOKBOT_DATABASE_PATH, HOOKBOT_WEBHOOKS_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Nick: "hookbot",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hookbot",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Webhooks: WebhooksConfig{
			Port:      8080,
			Autostart: true,
			Timeouts: WebhookTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 300,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/hookbot.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOOKBOT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Chat
	if v := os.Getenv("HOOKBOT_CHAT_NICK"); v != "" {
		cfg.Chat.Nick = v
	}
	if v := os.Getenv("HOOKBOT_CHAT_CHANNELS"); v != "" {
		cfg.Chat.Channels = splitList(v)
	}
	if v := os.Getenv("HOOKBOT_CHAT_OPERATORS"); v != "" {
		cfg.Chat.Operators = splitList(v)
	}

	// MQTT
	if v := os.Getenv("HOOKBOT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOOKBOT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOOKBOT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Webhooks
	if v := os.Getenv("HOOKBOT_WEBHOOKS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Webhooks.Port = port
		}
	}
	if v := os.Getenv("HOOKBOT_WEBHOOKS_ENABLED"); v != "" {
		cfg.Webhooks.Enabled = splitList(v)
	}

	// Database
	if v := os.Getenv("HOOKBOT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("HOOKBOT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("HOOKBOT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// splitList parses a comma-separated environment value into a slice,
// trimming whitespace around each element.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Chat validation
	if c.Chat.Nick == "" {
		errs = append(errs, "chat.nick is required")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Webhooks validation
	if c.Webhooks.Port < 1 || c.Webhooks.Port > 65535 {
		errs = append(errs, "webhooks.port must be between 1 and 65535")
	}
	if c.Webhooks.RateLimit.Enabled && c.Webhooks.RateLimit.RequestsPerMinute < 1 {
		errs = append(errs, "webhooks.rate_limit.requests_per_minute must be at least 1 when enabled")
	}
	for i, cred := range c.Webhooks.Credentials {
		if cred.User == "" {
			errs = append(errs, fmt.Sprintf("webhooks.credentials[%d].user is required", i))
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set HOOKBOT_INFLUXDB_TOKEN environment variable)")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the webhook service read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Webhooks.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the webhook service write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Webhooks.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the webhook service idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Webhooks.Timeouts.Idle) * time.Second
}
