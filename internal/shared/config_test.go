package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Player.RequestTimeout() != time.Second {
		t.Errorf("request timeout = %v, want 1s", config.Player.RequestTimeout())
	}
	if config.Player.PollInterval() != time.Second {
		t.Errorf("poll interval = %v, want 1s", config.Player.PollInterval())
	}
	if !config.Player.ResumeFromStart {
		t.Error("resume_from_start should default to true")
	}
	if config.Player.CallbackPort != 1608 {
		t.Errorf("callback port = %d, want 1608", config.Player.CallbackPort)
	}
	if config.Tokens.LoggedIn {
		t.Error("default config should not be logged in")
	}
	if config.Database.Path == "" {
		t.Error("default config should name a database path")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("err = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[player\nbroken"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("err = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "id"
client_secret = "secret"
redirect_uri = "http://127.0.0.1:9999/callback"

[player]
request_timeout_ms = 2500
poll_interval_ms = 5000
resume_from_start = false
callback_port = 9999
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if config.Credentials.Spotify.ClientID != "id" {
			t.Errorf("client id = %q", config.Credentials.Spotify.ClientID)
		}
		if config.Player.RequestTimeout() != 2500*time.Millisecond {
			t.Errorf("request timeout = %v, want 2.5s", config.Player.RequestTimeout())
		}
		if config.Player.ResumeFromStart {
			t.Error("resume_from_start should be false")
		}
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config := DefaultConfig()
	config.Tokens.AccessToken = "access"
	config.Tokens.RefreshToken = "refresh"
	config.Tokens.ExpiresAt = 12345
	config.Tokens.LoggedIn = true

	if err := config.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Tokens.AccessToken != "access" || loaded.Tokens.RefreshToken != "refresh" {
		t.Errorf("token pair = %q/%q", loaded.Tokens.AccessToken, loaded.Tokens.RefreshToken)
	}
	if loaded.Tokens.ExpiresAt != 12345 || !loaded.Tokens.LoggedIn {
		t.Error("token metadata was not round-tripped")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("created file doesn't parse: %v", err)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when the file already exists")
	}
}
