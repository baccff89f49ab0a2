package medium

import (
	"errors"
	"fmt"
)

// Erased is the value of an unwritten flash byte.
const Erased byte = 0xFF

var (
	ErrSizeMismatch = errors.New("medium: image size mismatch")
	ErrClosed       = errors.New("medium: closed")
)

// Medium is a fixed-size, byte-addressable region with an explicit commit.
// Offsets are not range checked against anything but the underlying buffer.
type Medium interface {
	Read(offset int) byte
	Write(offset int, value byte)
	Commit() error
	Size() int
}

// Fill writes value into [begin, end) without committing.
func Fill(m Medium, begin, end int, value byte) {
	for i := begin; i < end; i++ {
		m.Write(i, value)
	}
}

// Erase resets [begin, end) to the erased state and commits the result.
func Erase(m Medium, begin, end int) error {
	Fill(m, begin, end, Erased)
	if err := m.Commit(); err != nil {
		return fmt.Errorf("failed to commit erased region: %w", err)
	}
	return nil
}

// Snapshot copies the whole medium.
func Snapshot(m Medium) []byte {
	out := make([]byte, m.Size())
	for i := range out {
		out[i] = m.Read(i)
	}
	return out
}

// Restore overwrites the whole medium with image and commits it.
func Restore(m Medium, image []byte) error {
	if len(image) != m.Size() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(image), m.Size())
	}
	for i, b := range image {
		m.Write(i, b)
	}
	if err := m.Commit(); err != nil {
		return fmt.Errorf("failed to commit restored image: %w", err)
	}
	return nil
}
