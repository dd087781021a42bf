package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// It doubles as the persistence surface for the playback client: the client
// reads credentials, tunables, and the stored token state at startup and
// hands the token state back after every mutation so it can be written out
// in full.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Player      PlayerConfig      `toml:"player"`
	Tokens      TokenConfig       `toml:"tokens"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// PlayerConfig contains tunables for the polling client.
type PlayerConfig struct {
	RequestTimeoutMS int  `toml:"request_timeout_ms"`
	PollIntervalMS   int  `toml:"poll_interval_ms"`
	ResumeFromStart  bool `toml:"resume_from_start"`
	CallbackPort     int  `toml:"callback_port"`
}

// RequestTimeout returns the configured request timeout as a [time.Duration].
func (p PlayerConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutMS) * time.Millisecond
}

// PollInterval returns the configured poll interval as a [time.Duration].
func (p PlayerConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}

// TokenConfig contains the persisted OAuth token state.
//
// Written back in full whenever any field changes.
type TokenConfig struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	AuthCode     string `toml:"auth_code"`
	ExpiresAt    int64  `toml:"expires_at"`
	LoggedIn     bool   `toml:"logged_in"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the full configuration back to the specified path.
//
// Called after every token mutation so the stored token state never lags the
// in-memory state.
func (c *Config) SaveConfig(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
