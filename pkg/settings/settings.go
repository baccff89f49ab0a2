// Package settings wraps a KeyValueStore with the conveniences firmware code
// expects: typed getters, defaults, indexed keys, bulk moves and JSON backups.
// Settings is safe for concurrent use.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ssargent/embedis/pkg/medium"
	"github.com/ssargent/embedis/pkg/store"
)

// DefaultApp is the application name stamped on exported backups.
const DefaultApp = "EMBEDIS"

// maxIndex bounds MoveAll the same way indexed settings are bounded on devices.
const maxIndex = 100

var (
	// ErrWrongApp is returned by Restore when the backup belongs to another application.
	ErrWrongApp = errors.New("settings: wrong or missing app in backup")
	// ErrReservedKey is returned when storing under a backup metadata name.
	ErrReservedKey = errors.New("settings: key is reserved for backup metadata")
)

// Settings serializes access to a single KeyValueStore.
type Settings struct {
	mutex    sync.Mutex
	kv       *store.KeyValueStore
	logger   *slog.Logger
	app      string
	version  string
	defaults map[string]string
	eraser   func() error
}

// Option configures Settings.
type Option func(*Settings)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithApp sets the name and version written to and expected in backups.
func WithApp(name, version string) Option {
	return func(s *Settings) {
		s.app = name
		s.version = version
	}
}

// WithDefaults registers values reported by Query for keys that are not stored.
func WithDefaults(defaults map[string]string) Option {
	return func(s *Settings) {
		for k, v := range defaults {
			s.defaults[k] = v
		}
	}
}

// WithEraser replaces the routine Reset uses to wipe the region.
func WithEraser(eraser func() error) Option {
	return func(s *Settings) {
		s.eraser = eraser
	}
}

// New wraps kv.
func New(kv *store.KeyValueStore, opts ...Option) *Settings {
	s := &Settings{
		kv:       kv,
		logger:   slog.Default(),
		app:      DefaultApp,
		defaults: map[string]string{},
	}
	s.eraser = func() error {
		begin, end := kv.Region()
		return medium.Erase(kv.Medium(), begin, end)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// App returns the configured application name and version.
func (s *Settings) App() (string, string) {
	return s.app, s.version
}

// Get returns the stored value of key.
func (s *Settings) Get(key string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Get(key)
}

// GetString returns the stored value of key or def.
func (s *Settings) GetString(key, def string) string {
	if value, ok := s.Get(key); ok {
		return value
	}
	return def
}

// Query returns the registered default of key.
func (s *Settings) Query(key string) (string, bool) {
	value, ok := s.defaults[key]
	return value, ok
}

// Has reports whether key is stored.
func (s *Settings) Has(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Has(key)
}

// Set stores value under key. AppKey, VersionKey and BackupKey are refused
// with ErrReservedKey since backups use them for metadata.
func (s *Settings) Set(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.set(key, value)
}

func (s *Settings) set(key, value string) error {
	if reserved(key) {
		return fmt.Errorf("failed to set %q: %w", key, ErrReservedKey)
	}
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes keys and returns how many were stored.
func (s *Settings) Delete(keys ...string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.deleteKeys(keys)
}

// DeletePrefix removes every key starting with one of prefixes.
func (s *Settings) DeletePrefix(prefixes ...string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var matched []string
	s.kv.Foreach(func(key, _ string) {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				matched = append(matched, key)
				return
			}
		}
	})
	return s.deleteKeys(matched)
}

func (s *Settings) deleteKeys(keys []string) (int, error) {
	removed := 0
	for _, key := range keys {
		deleted, err := s.kv.Delete(key)
		if err != nil {
			return removed, fmt.Errorf("failed to delete %q: %w", key, err)
		}
		if deleted {
			removed++
		}
	}
	return removed, nil
}

// Keys returns the stored keys in lexical order.
func (s *Settings) Keys() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keys := s.kv.Keys()
	sort.Strings(keys)
	return keys
}

// Count returns the number of stored keys.
func (s *Settings) Count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Count()
}

// Available returns the free bytes of the region.
func (s *Settings) Available() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Available()
}

// Size returns the capacity of the region.
func (s *Settings) Size() int {
	return s.kv.Size()
}

// Used returns the bytes taken by entries.
func (s *Settings) Used() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Used()
}

// Stats returns usage figures.
func (s *Settings) Stats() store.Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.kv.Stats()
}

// Foreach calls fn for every stored pair while holding the lock.
func (s *Settings) Foreach(fn func(key, value string)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.kv.Foreach(fn)
}

// Move stores the value of from under to and removes from. When from is
// absent only the removal happens. A failed store keeps from.
func (s *Settings) Move(from, to string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.move(from, to)
}

// MoveIndexed moves the index-th key of prefix from to prefix to.
func (s *Settings) MoveIndexed(from, to string, index int) error {
	return s.Move(IndexedKey(from, index).Value(), IndexedKey(to, index).Value())
}

// MoveAll renames prefix from to prefix to for indexes starting at zero, up to
// the first missing index. It returns the number of moved keys.
func (s *Settings) MoveAll(from, to string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	moved := 0
	for index := 0; index < maxIndex; index++ {
		src := IndexedKey(from, index).Value()
		if !s.kv.Has(src) {
			break
		}
		if err := s.move(src, IndexedKey(to, index).Value()); err != nil {
			return moved, err
		}
		moved++
	}

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "settings: moved",
		slog.String("from", from), slog.String("to", to), slog.Int("count", moved))
	return moved, nil
}

func (s *Settings) move(from, to string) error {
	if value, ok := s.kv.Get(from); ok {
		if err := s.set(to, value); err != nil {
			return err
		}
	}
	if _, err := s.kv.Delete(from); err != nil {
		return fmt.Errorf("failed to delete %q: %w", from, err)
	}
	return nil
}

// Reset wipes the region.
func (s *Settings) Reset() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reset()
}

func (s *Settings) reset() error {
	if err := s.eraser(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	s.logger.Info("settings: reset")
	return nil
}

// Exclusive runs fn on the backing medium while holding the lock, for callers
// that rewrite the image wholesale.
func (s *Settings) Exclusive(fn func(m medium.Medium) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return fn(s.kv.Medium())
}

type flusher interface {
	Flush() error
}

// Save pushes pending changes to the backing storage. A medium that
// postpones commits is flushed; any other medium is committed.
func (s *Settings) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.kv.Medium()
	var err error
	if f, ok := m.(flusher); ok {
		err = f.Flush()
	} else {
		err = m.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
