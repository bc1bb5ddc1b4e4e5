package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.PassportURL != "https://passport.100tal.com" {
			t.Errorf("expected passport url https://passport.100tal.com, got %s", config.API.PassportURL)
		}

		if config.API.ClientID != "111101" {
			t.Errorf("expected client id 111101, got %s", config.API.ClientID)
		}

		if config.API.AppID != 1001108 {
			t.Errorf("expected app id 1001108, got %d", config.API.AppID)
		}

		if config.API.DeviceID != "" {
			t.Errorf("expected empty device id, got %s", config.API.DeviceID)
		}

		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.API.CodeURL != DefaultConfig().API.CodeURL {
			t.Errorf("created config code url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Setenv("XES_TAL_TOKEN", "")
		t.Setenv("XES_RFH", "")
		t.Setenv("XES_LOG_LEVEL", "")
		t.Setenv("XES_CODE_URL", "")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
code_url = "http://localhost:9090"
timeout_seconds = 3

[session]
xes_rfh = "rfh-from-file"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.CodeURL != "http://localhost:9090" {
			t.Errorf("expected code url http://localhost:9090, got %s", config.API.CodeURL)
		}

		if config.API.Timeout() != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", config.API.Timeout())
		}

		if config.API.ClientID != "111101" {
			t.Errorf("expected missing keys to keep defaults, got client id %q", config.API.ClientID)
		}

		if config.Session.XesRfh != "rfh-from-file" {
			t.Errorf("expected xes_rfh rfh-from-file, got %s", config.Session.XesRfh)
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\ncode_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("XES_TAL_TOKEN", "env-tal")
		t.Setenv("XES_RFH", "env-rfh")
		t.Setenv("XES_LOG_LEVEL", "debug")
		t.Setenv("XES_CODE_URL", "http://127.0.0.1:1")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Session.TalToken != "env-tal" {
			t.Errorf("expected tal token env-tal, got %s", config.Session.TalToken)
		}
		if config.Session.XesRfh != "env-rfh" {
			t.Errorf("expected xes_rfh env-rfh, got %s", config.Session.XesRfh)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
		if config.API.CodeURL != "http://127.0.0.1:1" {
			t.Errorf("expected code url override, got %s", config.API.CodeURL)
		}
	})

	t.Run("Timeout disabled", func(t *testing.T) {
		if got := (APIConfig{TimeoutSeconds: 0}).Timeout(); got != 0 {
			t.Errorf("expected zero timeout, got %v", got)
		}
	})
}
