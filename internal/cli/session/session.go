// Package session holds the CLI's viper-backed configuration: server address,
// the saved login token, and the local snapshot location.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"animehub/internal/client"
	"animehub/pkg/models"
)

// ConfigDir returns ~/.animehub, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".animehub")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Init loads ~/.animehub/config.yaml into viper and sets defaults.
// Missing config files are fine; defaults carry a fresh install.
func Init() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	dir, err := ConfigDir()
	if err != nil {
		return
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	_ = viper.ReadInConfig()
}

// BaseURL builds the server base URL from configuration.
func BaseURL() string {
	return fmt.Sprintf("http://%s:%d",
		viper.GetString("server.host"),
		viper.GetInt("server.http_port"))
}

// NewClient returns an API client without credentials.
func NewClient() *client.Client {
	return client.NewClient(BaseURL())
}

// NewAuthedClient returns an API client carrying the saved token, or an error
// when no login is saved.
func NewAuthedClient() (*client.Client, error) {
	token := viper.GetString("user.token")
	if token == "" {
		return nil, fmt.Errorf("not logged in. Please run: animehub auth login")
	}
	c := client.NewClient(BaseURL())
	c.SetToken(token)
	return c, nil
}

// UserID returns the saved user id, 0 when logged out.
func UserID() int64 {
	return viper.GetInt64("user.id")
}

// Save persists the session to ~/.animehub/config.yaml.
func Save(resp *models.LoginResponse) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	viper.Set("user.id", resp.User.ID)
	viper.Set("user.name", resp.User.Name)
	viper.Set("user.email", resp.User.Email)
	viper.Set("user.token", resp.Token)

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return path, nil
}

// SnapshotPath returns the location of the local library snapshot database.
func SnapshotPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.db"), nil
}
