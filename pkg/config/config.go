// Package config loads server configuration from YAML with sane defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5m"
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all server configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig for the REST API server
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RateLimit is requests per second per client IP; Burst is the bucket size.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// Addr returns host:port for the HTTP listener
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig for PostgreSQL
type DatabaseConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	User            string   `yaml:"user"`
	Password        string   `yaml:"password"`
	Database        string   `yaml:"database"`
	SSLMode         string   `yaml:"ssl_mode"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `yaml:"conn_max_idle_time"`
	Timeout         Duration `yaml:"timeout"`
}

// RedisConfig for the reaction-count cache
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// JWTConfig for session tokens
type JWTConfig struct {
	Secret     string   `yaml:"secret"`
	Issuer     string   `yaml:"issuer"`
	Expiration Duration `yaml:"expiration"`
}

// UploadsConfig for multipart file storage
type UploadsConfig struct {
	Dir     string `yaml:"dir"`      // filesystem directory for uploaded files
	BaseURL string `yaml:"base_url"` // URL prefix recorded on entities
}

// LoggingConfig mirrors pkg/logger.Config
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the development defaults
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			RateLimit: 20,
			Burst:     40,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "animehub",
			Password:        "animehub_dev_password",
			Database:        "animehub_dev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(5 * time.Minute),
			ConnMaxIdleTime: Duration(2 * time.Minute),
			Timeout:         Duration(5 * time.Second),
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			DB:      0,
			Enabled: true,
		},
		JWT: JWTConfig{
			Secret:     "dev-only-secret-change-me",
			Issuer:     "animehub",
			Expiration: Duration(time.Hour),
		},
		Uploads: UploadsConfig{
			Dir:     "./uploads",
			BaseURL: "/uploads",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// is absent. A present-but-unparseable file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// JWT secret may come from the environment in deployments
	if s := os.Getenv("ANIMEHUB_JWT_SECRET"); s != "" {
		cfg.JWT.Secret = s
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = Duration(time.Hour)
	}

	return cfg, nil
}
