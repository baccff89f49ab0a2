/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid config")

// Medium kinds
const (
	MediumFile   = "file"
	MediumMapped = "mmap"
	MediumMemory = "memory"
)

// Config represents the embedis configuration
type Config struct {
	App            string        `yaml:"app"`
	Image          string        `yaml:"image"`
	Medium         string        `yaml:"medium"`
	Region         Region        `yaml:"region"`
	CommitInterval time.Duration `yaml:"commit_interval"`
	Port           int           `yaml:"port"`
	Bind           string        `yaml:"bind"`
	Security       Security      `yaml:"security"`
	Archive        Archive       `yaml:"archive"`
	Logging        Logging       `yaml:"logging"`

	// Defaults are reported for keys that are not stored
	Defaults map[string]string `yaml:"defaults,omitempty"`
}

// Region describes the image layout. The first Reserved bytes belong to other
// users of the image; settings occupy the rest.
type Region struct {
	Size     int `yaml:"size"`
	Reserved int `yaml:"reserved"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Archive locates the snapshot archive
type Archive struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App:    "EMBEDIS",
		Image:  "./data/settings.img",
		Medium: MediumFile,
		Region: Region{
			Size:     4096,
			Reserved: 14,
		},
		Port: 8080,
		Bind: "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Archive: Archive{
			Backend: "pebble",
			Path:    "./data/snapshots",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the region bounds and the names of pluggable parts
func (c *Config) Validate() error {
	if c.Region.Size <= 0 {
		return fmt.Errorf("%w: region size must be positive, got %d", ErrInvalidConfig, c.Region.Size)
	}
	if c.Region.Reserved < 0 || c.Region.Size-c.Region.Reserved < 2 {
		return fmt.Errorf("%w: reserved %d leaves no room in a %d byte region",
			ErrInvalidConfig, c.Region.Reserved, c.Region.Size)
	}

	switch c.Medium {
	case MediumFile, MediumMapped:
		if c.Image == "" {
			return fmt.Errorf("%w: medium %q needs an image path", ErrInvalidConfig, c.Medium)
		}
	case MediumMemory:
	default:
		return fmt.Errorf("%w: unknown medium %q", ErrInvalidConfig, c.Medium)
	}

	if c.CommitInterval < 0 {
		return fmt.Errorf("%w: negative commit interval", ErrInvalidConfig)
	}

	switch c.Archive.Backend {
	case "", "pebble", "bolt":
	default:
		return fmt.Errorf("%w: unknown archive backend %q", ErrInvalidConfig, c.Archive.Backend)
	}

	if _, err := c.Logging.level(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// NewLogger builds a slog logger writing to w in the configured format
func (l Logging) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (l Logging) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return level, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, l.Level)
	}
	return level, nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// missing fields keep their defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key. Image
// and snapshots are placed under dataDir when it is given.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Image = filepath.Join(dataDir, "settings.img")
		config.Archive.Path = filepath.Join(dataDir, "snapshots")
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./embedis.yaml"
	}

	// For Linux/macOS, use ~/.config/embedis/config.yaml
	configDir := filepath.Join(homeDir, ".config", "embedis")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
