package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig contains the remote endpoints and the fixed headers the platform expects.
type APIConfig struct {
	PassportURL       string  `toml:"passport_url"`
	LoginURL          string  `toml:"login_url"`
	CodeURL           string  `toml:"code_url"`
	ClientID          string  `toml:"client_id"`
	DeviceID          string  `toml:"device_id"`
	VerNum            string  `toml:"ver_num"`
	Referer           string  `toml:"referer"`
	UserAgent         string  `toml:"user_agent"`
	AppID             int     `toml:"app_id"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SessionConfig holds an optional pre-supplied session (cookie values).
type SessionConfig struct {
	TalToken string `toml:"tal_token"`
	XesRfh   string `toml:"xes_rfh"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Timeout returns the HTTP client timeout. Zero means no timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults, and environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.ApplyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides session and logging settings from XES_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("XES_TAL_TOKEN"); v != "" {
		c.Session.TalToken = v
	}
	if v := os.Getenv("XES_RFH"); v != "" {
		c.Session.XesRfh = v
	}
	if v := os.Getenv("XES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("XES_CODE_URL"); v != "" {
		c.API.CodeURL = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
