package mmap

import (
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Mapping represents a memory-mapped file.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data     []byte
	size     int
	writable bool
	closed   atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	return open(path, modeReadOnly)
}

// OpenPrivate maps the file at path copy-on-write. The returned bytes may be
// modified; modifications are never written back to the file.
func OpenPrivate(path string) (*Mapping, error) {
	return open(path, modePrivate)
}

func open(path string, md mode) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return mapFile(f, fi.Size(), md)
}

// Map maps size bytes of an open file as read-only. The mapping stays valid
// after f is closed.
func Map(f *os.File, size int64) (*Mapping, error) {
	return mapFile(f, size, modeReadOnly)
}

func mapFile(f *os.File, size int64, md mode) (*Mapping, error) {
	if size == 0 {
		return &Mapping{writable: md == modePrivate}, nil
	}
	if size < 0 || size > math.MaxInt {
		return nil, ErrInvalidSize
	}

	// Platform-specific mapping
	data, unmapFunc, err := osMap(f, int(size), md)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:     data,
		size:     int(size),
		writable: md == modePrivate,
		unmap:    unmapFunc,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Writable reports whether the mapping is a private copy-on-write mapping.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
