package archive

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// PebbleArchive keeps snapshots in a pebble database keyed by the raw KSUID
// bytes, which sort by creation time.
type PebbleArchive struct {
	db *pebble.DB
}

// OpenPebble opens or creates the pebble database directory at path.
func OpenPebble(path string) (*PebbleArchive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot archive: %w", err)
	}
	return &PebbleArchive{db: db}, nil
}

// Save stores s with a synced write, replacing a snapshot with the same ID.
func (a *PebbleArchive) Save(s *Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	return a.db.Set(s.ID.Bytes(), data, pebble.Sync)
}

// Load returns the snapshot with id, or ErrNotFound.
func (a *PebbleArchive) Load(id ksuid.KSUID) (*Snapshot, error) {
	data, closer, err := a.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// decode copies what it keeps; data is only valid until closer.Close
	return decode(data)
}

// List returns every snapshot, oldest first.
func (a *PebbleArchive) List() ([]Info, error) {
	iter, err := a.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var infos []Info
	for iter.First(); iter.Valid(); iter.Next() {
		s, err := decode(iter.Value())
		if err != nil {
			return nil, err
		}
		infos = append(infos, s.Info())
	}
	return infos, iter.Error()
}

// Delete removes the snapshot with id, or returns ErrNotFound.
func (a *PebbleArchive) Delete(id ksuid.KSUID) error {
	if _, err := a.Load(id); err != nil {
		return err
	}
	return a.db.Delete(id.Bytes(), pebble.Sync)
}

// Close closes the database.
func (a *PebbleArchive) Close() error {
	return a.db.Close()
}
