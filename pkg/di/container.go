// Package di provides dependency injection container
package di

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ssargent/embedis/pkg/api" //nolint:depguard
	"github.com/ssargent/embedis/pkg/archive"
	"github.com/ssargent/embedis/pkg/config"
	"github.com/ssargent/embedis/pkg/medium"
	"github.com/ssargent/embedis/pkg/settings"
	"github.com/ssargent/embedis/pkg/store"
)

// Version is stamped on exported backups
var Version = "dev"

var errNotOpen = errors.New("container is not open")

// Container holds all the dependencies for the application. It owns exactly
// one medium and one store.
type Container struct {
	serverFactory api.ServerFactory

	config   *config.Config
	logger   *slog.Logger
	medium   medium.Medium
	closers  []io.Closer
	store    *store.KeyValueStore
	settings *settings.Settings

	archiveOnce sync.Once
	archive     archive.Archive
	archiveErr  error
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
	}
}

// Open builds the medium, store and settings described by cfg
func (c *Container) Open(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c.config = cfg
	c.logger = logger

	m, err := c.openMedium(cfg)
	if err != nil {
		c.Close()
		return err
	}
	c.medium = m

	kv, err := store.New(m, cfg.Region.Reserved, cfg.Region.Size, store.WithLogger(logger))
	if err != nil {
		c.Close()
		return fmt.Errorf("failed to open store: %w", err)
	}
	c.store = kv

	c.settings = settings.New(kv,
		settings.WithLogger(logger),
		settings.WithApp(cfg.App, Version),
		settings.WithDefaults(cfg.Defaults),
	)

	logger.Debug("container: opened",
		slog.String("medium", cfg.Medium),
		slog.String("image", cfg.Image),
		slog.Int("size", cfg.Region.Size),
		slog.Int("reserved", cfg.Region.Reserved))
	return nil
}

func (c *Container) openMedium(cfg *config.Config) (medium.Medium, error) {
	var m medium.Medium
	switch cfg.Medium {
	case config.MediumMemory:
		m = medium.NewMemory(cfg.Region.Size)
	case config.MediumFile:
		f, err := medium.OpenFile(cfg.Image, cfg.Region.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		c.closers = append(c.closers, f)
		m = f
	case config.MediumMapped:
		if err := os.MkdirAll(filepath.Dir(cfg.Image), 0750); err != nil {
			return nil, fmt.Errorf("failed to create image directory: %w", err)
		}
		mapped, err := medium.OpenMapped(cfg.Image, cfg.Region.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		c.closers = append(c.closers, mapped)
		m = mapped
	}

	if cfg.CommitInterval > 0 {
		deferred := medium.NewDeferred(m, cfg.CommitInterval)
		// closed first so the last changes reach the inner medium
		c.closers = append([]io.Closer{deferred}, c.closers...)
		m = deferred
	}
	return m, nil
}

// Settings returns the settings of the open container
func (c *Container) Settings() *settings.Settings {
	return c.settings
}

// Store returns the key-value store of the open container
func (c *Container) Store() *store.KeyValueStore {
	return c.store
}

// Medium returns the backing medium of the open container
func (c *Container) Medium() medium.Medium {
	return c.medium
}

// Archive opens the configured snapshot archive on first use
func (c *Container) Archive() (archive.Archive, error) {
	if c.config == nil {
		return nil, errNotOpen
	}
	c.archiveOnce.Do(func() {
		path := c.config.Archive.Path
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			c.archiveErr = fmt.Errorf("failed to create archive directory: %w", err)
			return
		}
		c.archive, c.archiveErr = archive.Open(c.config.Archive.Backend, path)
	})
	return c.archive, c.archiveErr
}

// CreateSnapshot saves pending changes and archives the whole image
func (c *Container) CreateSnapshot(label string) (archive.Info, error) {
	a, err := c.Archive()
	if err != nil {
		return archive.Info{}, err
	}
	if err := c.settings.Save(); err != nil {
		return archive.Info{}, err
	}

	var snap *archive.Snapshot
	err = c.settings.Exclusive(func(m medium.Medium) error {
		snap = archive.Capture(m, label)
		return nil
	})
	if err != nil {
		return archive.Info{}, err
	}
	if err := a.Save(snap); err != nil {
		return archive.Info{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	c.logger.Info("container: snapshot created", slog.String("id", snap.ID.String()), slog.String("label", label))
	return snap.Info(), nil
}

// ListSnapshots lists archived snapshots, oldest first
func (c *Container) ListSnapshots() ([]archive.Info, error) {
	a, err := c.Archive()
	if err != nil {
		return nil, err
	}
	return a.List()
}

// RestoreSnapshot writes an archived image over the medium
func (c *Container) RestoreSnapshot(id string) error {
	a, err := c.Archive()
	if err != nil {
		return err
	}
	parsed, err := archive.ParseID(id)
	if err != nil {
		return err
	}
	snap, err := a.Load(parsed)
	if err != nil {
		return err
	}

	err = c.settings.Exclusive(func(m medium.Medium) error {
		return archive.Apply(m, snap)
	})
	if err != nil {
		return err
	}

	c.logger.Info("container: snapshot restored", slog.String("id", id))
	return c.settings.Save()
}

// DeleteSnapshot removes an archived snapshot
func (c *Container) DeleteSnapshot(id string) error {
	a, err := c.Archive()
	if err != nil {
		return err
	}
	parsed, err := archive.ParseID(id)
	if err != nil {
		return err
	}
	return a.Delete(parsed)
}

// Dependencies returns what the API server needs
func (c *Container) Dependencies() api.Dependencies {
	return api.Dependencies{
		Settings:  c.settings,
		Snapshots: c,
		Logger:    c.logger,
	}
}

// Close flushes and releases the medium and the archive
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil

	if c.archive != nil {
		if err := c.archive.Close(); err != nil {
			errs = append(errs, err)
		}
		c.archive = nil
	}
	c.archiveOnce = sync.Once{}
	c.archiveErr = nil
	return errors.Join(errs...)
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
