package medium

import (
	"fmt"
	"os"
	"path/filepath"
)

// File keeps the image in RAM and writes the whole of it on Commit, the way
// the EEPROM emulation copies its sector buffer to flash.
type File struct {
	path   string
	data   []byte
	closed bool
}

// OpenFile loads the image at path. A missing file yields an erased image
// that is only created on the first Commit.
func OpenFile(path string, size int) (*File, error) {
	f := &File{path: path, data: make([]byte, size)}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		for i := range f.data {
			f.data[i] = Erased
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read image: %w", err)
	case len(data) != size:
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSizeMismatch, path, len(data), size)
	default:
		copy(f.data, data)
	}

	return f, nil
}

func (f *File) Read(offset int) byte {
	return f.data[offset]
}

func (f *File) Write(offset int, value byte) {
	f.data[offset] = value
}

func (f *File) Size() int {
	return len(f.data)
}

// Path returns the image location.
func (f *File) Path() string {
	return f.path
}

// Commit atomically replaces the image file with the current contents.
func (f *File) Commit() error {
	if f.closed {
		return ErrClosed
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(f.data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}

// Close marks the medium closed. Uncommitted changes are dropped.
func (f *File) Close() error {
	f.closed = true
	return nil
}
