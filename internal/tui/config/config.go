package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all TUI configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	UI     UIConfig     `yaml:"ui"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	Host string     `yaml:"host"`
	HTTP HTTPConfig `yaml:"http"`
	WS   WSConfig   `yaml:"ws"`
}

// HTTPConfig for the REST API
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// WSConfig for the reaction-count subscription feed
type WSConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}

// UIConfig for UI preferences
type UIConfig struct {
	PageSize int `yaml:"page_size"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			HTTP: HTTPConfig{
				Port:    8080,
				BaseURL: "http://localhost:8080",
			},
			WS: WSConfig{
				Port: 8080,
				Path: "/ws/animes",
				URL:  "ws://localhost:8080/ws/animes",
			},
		},
		UI: UIConfig{
			PageSize: 20,
		},
	}
}

// Load loads configuration from file, falling back to defaults
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return Default(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Public hosts get TLS schemes, localhost stays plain.
	httpScheme := "http"
	wsScheme := "ws"
	if cfg.Server.Host != "localhost" && cfg.Server.Host != "127.0.0.1" {
		httpScheme = "https"
		wsScheme = "wss"
	}

	cfg.Server.HTTP.BaseURL = fmt.Sprintf("%s://%s:%d",
		httpScheme, cfg.Server.Host, cfg.Server.HTTP.Port)
	cfg.Server.WS.URL = fmt.Sprintf("%s://%s:%d%s",
		wsScheme, cfg.Server.Host, cfg.Server.WS.Port, cfg.Server.WS.Path)

	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = 20
	}

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// findConfigFile searches for config in standard locations
func findConfigFile() string {
	locations := []string{
		"./animehub-tui.yaml",
		"./config/tui.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "animehub", "tui.yaml"),
		filepath.Join(os.Getenv("HOME"), ".animehub-tui.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// GetHTTPBaseURL returns the computed HTTP base URL
func (c *Config) GetHTTPBaseURL() string {
	if c.Server.HTTP.BaseURL != "" {
		return c.Server.HTTP.BaseURL
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.HTTP.Port)
}

// GetWebSocketURL returns the computed WebSocket base URL
func (c *Config) GetWebSocketURL() string {
	if c.Server.WS.URL != "" {
		return c.Server.WS.URL
	}
	return fmt.Sprintf("ws://%s:%d%s", c.Server.Host, c.Server.WS.Port, c.Server.WS.Path)
}
