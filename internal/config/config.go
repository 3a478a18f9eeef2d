// Package config loads and saves the local YAML settings file, which also
// holds the API credential.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"threef/internal/assist"
)

// MaxRefreshInterval is the coarsest allowed canvas refresh cadence.
const MaxRefreshInterval = 100 * time.Millisecond

// Duration reads and writes "5s"-style strings.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

type Config struct {
	APIKey          string   `yaml:"api_key"`
	Model           string   `yaml:"model"`
	BaseURL         string   `yaml:"base_url"`
	Backend         string   `yaml:"backend"`
	Timeout         Duration `yaml:"timeout"`
	Debounce        Duration `yaml:"debounce"`
	AutoPolish      bool     `yaml:"auto_polish"`
	RefreshInterval Duration `yaml:"refresh_interval"`
	SaveDirectory   string   `yaml:"save_directory"`
	Confirmations   bool     `yaml:"confirmations"`
	LogFile         string   `yaml:"log_file"`
	LogLevel        string   `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Model:           assist.DefaultModel,
		BaseURL:         assist.DefaultBaseURL,
		Backend:         assist.BackendREST,
		Timeout:         Duration(assist.DefaultTimeout),
		Debounce:        Duration(5 * time.Second),
		RefreshInterval: Duration(MaxRefreshInterval),
		Confirmations:   true,
		LogFile:         "~/.threef/threef.log",
		LogLevel:        "info",
	}
}

// DefaultPath is ~/.threef/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".threef", "config.yaml"), nil
}

// Resolve returns path, or DefaultPath when it is empty.
func Resolve(path string) (string, error) {
	if path != "" {
		return expandHome(path), nil
	}
	return DefaultPath()
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, c.normalize()
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) normalize() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = assist.BackendREST
	case assist.BackendREST, assist.BackendSDK:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, assist.BackendREST, assist.BackendSDK)
	}
	if c.RefreshInterval <= 0 || c.RefreshInterval.D() > MaxRefreshInterval {
		c.RefreshInterval = Duration(MaxRefreshInterval)
	}
	if c.Timeout <= 0 {
		c.Timeout = Default().Timeout
	}
	if c.Debounce < 0 {
		c.Debounce = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// Save writes c to path with owner-only permissions.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveCredential overwrites only the api_key of the file at path.
func SaveCredential(path, key string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.APIKey = strings.TrimSpace(key)
	if err := Save(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return c.APIKey != ""
}

// LogPath is the log file with ~ expanded.
func (c *Config) LogPath() string {
	return expandHome(c.LogFile)
}

// SavePath places an export file in the save directory, if one is set,
// creating the directory on the way.
func (c *Config) SavePath(filename string) (string, error) {
	if c.SaveDirectory == "" {
		return filename, nil
	}
	dir := expandHome(c.SaveDirectory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save directory: %w", err)
	}
	return filepath.Join(dir, filename), nil
}
