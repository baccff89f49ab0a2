package api

import (
	"log/slog"
	"time"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SettingResponse is returned for a single key
type SettingResponse struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default bool   `json:"default,omitempty"`
}

// SnapshotRequest is the optional body of a snapshot creation
type SnapshotRequest struct {
	Label string `json:"label"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	Bind            string
	APIKey          string
	MetricsInterval time.Duration // how often store gauges are refreshed
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// Dependencies are the services the API server exposes. Snapshots may be nil
// when no archive is configured.
type Dependencies struct {
	Settings  ISettingsStore
	Snapshots ISnapshotStore
	Logger    *slog.Logger
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	return c
}
