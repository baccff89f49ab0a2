// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/embedis/pkg/archive"
	"github.com/ssargent/embedis/pkg/store"
)

// ISettingsStore defines the settings operations served over HTTP
type ISettingsStore interface {
	Get(key string) (string, bool)
	Query(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) (int, error)
	Keys() []string
	Export() map[string]string
	Restore(data []byte) error
	Stats() store.Stats
	Save() error
}

// ISnapshotStore defines the snapshot archive operations
type ISnapshotStore interface {
	CreateSnapshot(label string) (archive.Info, error)
	ListSnapshots() ([]archive.Info, error)
	RestoreSnapshot(id string) error
	DeleteSnapshot(id string) error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, deps Dependencies, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
