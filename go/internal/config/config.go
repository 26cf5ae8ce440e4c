// Package config loads process configuration: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/recruit/go/internal/dbconfig"
	"github.com/mcdev12/recruit/go/internal/discovery"
	"github.com/mcdev12/recruit/go/internal/invitations"
	"github.com/mcdev12/recruit/go/internal/notify/outbox"
)

// DefaultPath is read when RECRUIT_CONFIG is unset and the file exists.
const DefaultPath = "config.yaml"

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	Invitations InvitationsConfig `yaml:"invitations"`
	Discovery   discovery.Config  `yaml:"discovery"`
	Redis       RedisConfig       `yaml:"redis"`
	Outbox      OutboxConfig      `yaml:"outbox"`

	// DB always comes from the DB_* variables.
	DB dbconfig.Config `yaml:"-"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type InvitationsConfig struct {
	TTL time.Duration `yaml:"ttl"`
	// SweepInterval is how often the server expires stale invitations.
	// Zero disables the sweep.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// RedisConfig enables the discovery cache when URL is set.
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type OutboxConfig struct {
	Publisher      string                 `yaml:"publisher"` // nats, kafka or log
	HealthPort     string                 `yaml:"health_port"`
	StaleThreshold time.Duration          `yaml:"stale_threshold"`
	Relay          outbox.RelayConfig     `yaml:"relay"`
	Listener       outbox.ListenerConfig  `yaml:"listener"`
	NATS           outbox.JetStreamConfig `yaml:"nats"`
	Kafka          outbox.KafkaConfig     `yaml:"kafka"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 15 * time.Second,
		},
		Log:         LogConfig{Level: "info", Format: "console"},
		Auth:        AuthConfig{Issuer: "recruit"},
		Invitations: InvitationsConfig{TTL: invitations.DefaultTTL, SweepInterval: time.Hour},
		Discovery:   discovery.DefaultConfig(),
		Redis:       RedisConfig{Prefix: "recruit:candidates"},
		Outbox: OutboxConfig{
			Publisher:      "log",
			HealthPort:     "8081",
			StaleThreshold: 5 * time.Minute,
			Relay:          outbox.DefaultRelayConfig(),
			Listener:       outbox.DefaultListenerConfig(),
			NATS:           outbox.DefaultJetStreamConfig(),
			Kafka:          outbox.DefaultKafkaConfig(),
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first if present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	path, explicit := os.LookupEnv("RECRUIT_CONFIG")
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	cfg.DB = dbconfig.NewConfigFromEnv()
	cfg.Outbox.Listener.DatabaseURL = cfg.DB.DSN()

	if err := errors.Join(cfg.Validate(), cfg.DB.Validate()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTP.Port = getEnv("PORT", c.HTTP.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.HTTP.AllowedOrigins = splitList(origins)
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Invitations.TTL = getEnvAsDuration("INVITATION_TTL", c.Invitations.TTL)
	c.Invitations.SweepInterval = getEnvAsDuration("INVITATION_SWEEP_INTERVAL", c.Invitations.SweepInterval)
	c.Discovery.SearchWidens = getEnvAsBool("DISCOVERY_SEARCH_WIDENS", c.Discovery.SearchWidens)
	c.Discovery.CacheTTL = getEnvAsDuration("DISCOVERY_CACHE_TTL", c.Discovery.CacheTTL)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Outbox.Publisher = getEnv("OUTBOX_PUBLISHER", c.Outbox.Publisher)
	c.Outbox.HealthPort = getEnv("OUTBOX_HEALTH_PORT", c.Outbox.HealthPort)
	c.Outbox.Listener.FallbackInterval = getEnvAsDuration("FALLBACK_INTERVAL", c.Outbox.Listener.FallbackInterval)
	c.Outbox.NATS.URL = getEnv("NATS_URL", c.Outbox.NATS.URL)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Outbox.Kafka.Brokers = splitList(brokers)
	}
	c.Outbox.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Outbox.Kafka.Topic)
}

// ValidateServer adds the checks only the API server needs.
func (c Config) ValidateServer() error {
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Validate rejects configurations no binary can start with.
func (c Config) Validate() error {
	var errs []error
	if c.Invitations.TTL <= 0 {
		errs = append(errs, errors.New("invitations.ttl must be positive"))
	}
	if c.Invitations.SweepInterval < 0 {
		errs = append(errs, errors.New("invitations.sweep_interval must not be negative"))
	}
	d := c.Discovery
	if d.RadiusKm <= 0 || d.BoxDegrees <= 0 || d.CandidateMultiplier < 1 {
		errs = append(errs, errors.New("discovery radius, box and multiplier must be positive"))
	}
	if d.DefaultLimit < 1 || d.MaxLimit < d.DefaultLimit {
		errs = append(errs, fmt.Errorf("discovery limits invalid: default %d, max %d", d.DefaultLimit, d.MaxLimit))
	}
	switch c.Outbox.Publisher {
	case "nats", "kafka", "log":
	default:
		errs = append(errs, fmt.Errorf("unknown outbox publisher %q", c.Outbox.Publisher))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid bool")
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
