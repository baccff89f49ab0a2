package archive

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ssargent/embedis/pkg/medium"
)

// Snapshot is a full copy of a committed settings image.
type Snapshot struct {
	ID        ksuid.KSUID `msgpack:"id"`
	Label     string      `msgpack:"label"`
	CreatedAt time.Time   `msgpack:"created_at"`
	Size      int         `msgpack:"size"`
	Checksum  uint64      `msgpack:"checksum"`
	Image     []byte      `msgpack:"image"`
}

// Info describes a snapshot without its image.
type Info struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
	Checksum  string    `json:"checksum"`
}

// Capture copies the whole medium.
func Capture(m medium.Medium, label string) *Snapshot {
	image := medium.Snapshot(m)
	return &Snapshot{
		ID:        ksuid.New(),
		Label:     label,
		CreatedAt: time.Now().UTC(),
		Size:      len(image),
		Checksum:  xxhash.Sum64(image),
		Image:     image,
	}
}

// Verify checks the image against its recorded size and checksum.
func (s *Snapshot) Verify() error {
	if len(s.Image) != s.Size {
		return fmt.Errorf("%w: snapshot %s holds %d bytes, want %d", ErrChecksum, s.ID, len(s.Image), s.Size)
	}
	if sum := xxhash.Sum64(s.Image); sum != s.Checksum {
		return fmt.Errorf("%w: snapshot %s has %016x, want %016x", ErrChecksum, s.ID, sum, s.Checksum)
	}
	return nil
}

// Info returns the snapshot metadata.
func (s *Snapshot) Info() Info {
	return Info{
		ID:        s.ID.String(),
		Label:     s.Label,
		CreatedAt: s.CreatedAt,
		Size:      s.Size,
		Checksum:  fmt.Sprintf("%016x", s.Checksum),
	}
}

// Apply writes the snapshot image over the whole medium and commits it.
func Apply(m medium.Medium, s *Snapshot) error {
	if err := s.Verify(); err != nil {
		return err
	}
	if err := medium.Restore(m, s.Image); err != nil {
		return fmt.Errorf("failed to apply snapshot %s: %w", s.ID, err)
	}
	return nil
}

func encode(s *Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
