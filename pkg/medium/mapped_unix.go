//go:build unix

package medium

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is an image file mapped MAP_SHARED into memory. Writes land in the
// page cache directly and Commit forces them out with msync.
type Mapped struct {
	file *os.File
	data []byte
}

// OpenMapped maps the image at path, creating an erased one if needed.
func OpenMapped(path string, size int) (*Mapped, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	fresh := stat.Size() == 0
	switch {
	case fresh:
		if err := file.Truncate(int64(size)); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to size image: %w", err)
		}
	case stat.Size() != int64(size):
		file.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSizeMismatch, path, stat.Size(), size)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to map image: %w", err)
	}

	m := &Mapped{file: file, data: data}
	if fresh {
		for i := range m.data {
			m.data[i] = Erased
		}
		if err := m.Commit(); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

func (m *Mapped) Read(offset int) byte {
	return m.data[offset]
}

func (m *Mapped) Write(offset int, value byte) {
	m.data[offset] = value
}

func (m *Mapped) Size() int {
	return len(m.data)
}

// Commit flushes the mapping to the file with msync.
func (m *Mapped) Commit() error {
	if m.data == nil {
		return ErrClosed
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("failed to sync image: %w", err)
	}
	return nil
}

// Close unmaps the image and closes the file.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}
