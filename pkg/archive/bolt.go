package archive

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.etcd.io/bbolt"
)

var snapshotsBucket = []byte("snapshots")

// BoltArchive keeps snapshots in a single bbolt bucket.
type BoltArchive struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the bbolt file at path. It waits up to ten
// seconds for another process holding the file lock.
func OpenBolt(path string) (*BoltArchive, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot archive: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot bucket: %w", err)
	}
	return &BoltArchive{db: db}, nil
}

// Save stores s, replacing a snapshot with the same ID.
func (a *BoltArchive) Save(s *Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put(s.ID.Bytes(), data)
	})
}

// Load returns the snapshot with id, or ErrNotFound.
func (a *BoltArchive) Load(id ksuid.KSUID) (*Snapshot, error) {
	var s *Snapshot
	err := a.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(snapshotsBucket).Get(id.Bytes())
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var err error
		s, err = decode(data)
		return err
	})
	return s, err
}

// List returns every snapshot in key order, which is creation order.
func (a *BoltArchive) List() ([]Info, error) {
	var infos []Info
	err := a.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).ForEach(func(_, v []byte) error {
			s, err := decode(v)
			if err != nil {
				return err
			}
			infos = append(infos, s.Info())
			return nil
		})
	})
	return infos, err
}

// Delete removes the snapshot with id, or returns ErrNotFound.
func (a *BoltArchive) Delete(id ksuid.KSUID) error {
	return a.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(snapshotsBucket)
		if b.Get(id.Bytes()) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return b.Delete(id.Bytes())
	})
}

// Close closes the database file.
func (a *BoltArchive) Close() error {
	return a.db.Close()
}
