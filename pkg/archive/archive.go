// Package archive keeps backup copies of the settings image outside of it.
package archive

import (
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound       = errors.New("archive: snapshot not found")
	ErrChecksum       = errors.New("archive: snapshot checksum mismatch")
	ErrUnknownBackend = errors.New("archive: unknown backend")
)

// Backend names accepted by Open.
const (
	BackendPebble = "pebble"
	BackendBolt   = "bolt"
)

// Archive stores snapshots by id. List returns the oldest snapshot first.
type Archive interface {
	Save(s *Snapshot) error
	Load(id ksuid.KSUID) (*Snapshot, error)
	List() ([]Info, error)
	Delete(id ksuid.KSUID) error
	Close() error
}

// Open opens the archive at path with the named backend.
func Open(backend, path string) (Archive, error) {
	switch backend {
	case BackendPebble, "":
		return OpenPebble(path)
	case BackendBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// ParseID parses the textual id of a snapshot.
func ParseID(id string) (ksuid.KSUID, error) {
	parsed, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return parsed, nil
}
