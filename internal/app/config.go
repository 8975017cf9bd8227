package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the coffee shop API.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	LogLevel  string     `mapstructure:"log_level"`
	LogFormat string     `mapstructure:"log_format"`
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig restricts which browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver       string       `mapstructure:"driver"`
	Path         string       `mapstructure:"path"`
	DSN          string       `mapstructure:"dsn"`
	ResetOnStart bool         `mapstructure:"reset_on_start"`
	Postgres     DBAuthConfig `mapstructure:"postgres"`
	MySQL        DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Domain       string        `mapstructure:"domain"`
	Audience     string        `mapstructure:"audience"`
	Issuer       string        `mapstructure:"issuer"`
	Algorithms   []string      `mapstructure:"algorithms"`
	JWKSURL      string        `mapstructure:"jwks_url"`
	JWKSFile     string        `mapstructure:"jwks_file"`
	Discovery    bool          `mapstructure:"discovery"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	Leeway       time.Duration `mapstructure:"leeway"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	Health          HealthConfig     `mapstructure:"health_check"`
	CatalogSchedule string           `mapstructure:"catalog_schedule"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Environment variables prefixed with COFFEESHOP_ override file values.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("COFFEESHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	if strings.TrimSpace(c.Auth.Audience) == "" {
		return errors.New("config: auth.audience is required")
	}
	if strings.TrimSpace(c.Auth.Domain) == "" && strings.TrimSpace(c.Auth.JWKSURL) == "" && strings.TrimSpace(c.Auth.JWKSFile) == "" {
		return errors.New("config: one of auth.domain, auth.jwks_url or auth.jwks_file is required")
	}
	if c.Auth.Discovery && strings.TrimSpace(c.Auth.Domain) == "" && strings.TrimSpace(c.Auth.Issuer) == "" {
		return errors.New("config: auth.discovery needs auth.domain or auth.issuer")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/coffeeshop.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.reset_on_start", true)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "127.0.0.1")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("auth.domain", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.algorithms", []string{"RS256"})
	v.SetDefault("auth.jwks_url", "")
	v.SetDefault("auth.jwks_file", "")
	v.SetDefault("auth.discovery", false)
	v.SetDefault("auth.fetch_timeout", "10s")
	v.SetDefault("auth.leeway", "0s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
	v.SetDefault("monitoring.catalog_schedule", "@every 1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
