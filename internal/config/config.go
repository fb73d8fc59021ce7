// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/analytics"
)

var (
	ErrInvalidStorage       = errors.New("STORAGE must be memory or postgres")
	ErrInvalidPendingPolicy = errors.New("ANALYTICS_PENDING_POLICY must be overrides_grade or overrides_red")
	ErrMissingJWTSecret     = errors.New("JWT_SECRET is required")
)

type Storage string

const (
	StorageMemory   Storage = "memory"
	StoragePostgres Storage = "postgres"
)

type DB struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"kanso"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Enabled reports whether a Redis host was configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"kanso"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"72h"`
}

type Analytics struct {
	LookbackDays    int     `env:"ANALYTICS_LOOKBACK_DAYS" envDefault:"90"`
	PendingPolicy   string  `env:"ANALYTICS_PENDING_POLICY" envDefault:"overrides_grade"`
	MetricName      string  `env:"ANALYTICS_METRIC_NAME" envDefault:"sleep_hours"`
	MetricThreshold float64 `env:"ANALYTICS_METRIC_THRESHOLD" envDefault:"7"`
	MaxInsights     int     `env:"ANALYTICS_MAX_INSIGHTS" envDefault:"6"`
}

type Config struct {
	Port      string  `env:"PORT" envDefault:"8080"`
	LogLevel  string  `env:"LOG_LEVEL" envDefault:"info"`
	Storage   Storage `env:"STORAGE" envDefault:"postgres"`
	RateLimit int     `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`

	DB        DB
	Redis     Redis
	Auth      Auth
	Analytics Analytics
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage != StorageMemory && c.Storage != StoragePostgres {
		return ErrInvalidStorage
	}
	if !analytics.PendingPolicy(c.Analytics.PendingPolicy).Valid() {
		return ErrInvalidPendingPolicy
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// AnalyticsConfig turns the tuning knobs into an engine configuration on top
// of the default categories, synonyms and thresholds.
func (c *Config) AnalyticsConfig() analytics.Config {
	cfg := analytics.DefaultConfig()
	cfg.LookbackDays = c.Analytics.LookbackDays
	cfg.Pending = analytics.PendingPolicy(c.Analytics.PendingPolicy)
	cfg.MetricName = c.Analytics.MetricName
	cfg.MetricThreshold = c.Analytics.MetricThreshold
	cfg.MaxInsights = c.Analytics.MaxInsights
	return cfg
}
