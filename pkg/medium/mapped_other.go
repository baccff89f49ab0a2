//go:build !unix

package medium

import "errors"

var errMappedUnsupported = errors.New("medium: mapped images need a unix platform")

// Mapped is unavailable on this platform.
type Mapped struct{}

// OpenMapped always fails on this platform.
func OpenMapped(path string, size int) (*Mapped, error) {
	return nil, errMappedUnsupported
}

func (m *Mapped) Read(offset int) byte { return Erased }
func (m *Mapped) Write(offset int, value byte) {}
func (m *Mapped) Size() int { return 0 }
func (m *Mapped) Commit() error { return errMappedUnsupported }
func (m *Mapped) Close() error { return nil }
