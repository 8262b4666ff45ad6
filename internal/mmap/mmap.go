// Package mmap provides read-only memory-mapped file access.
//
// Format engines use it to hand whole dataset files to their parsers as
// io.ReaderAt views without buffering them through the heap. Mappings are
// safe for concurrent reads; Close must not race with readers.
package mmap

import (
	"errors"
	"io"
	"os"
)

// ErrClosed is returned when reading from a closed mapping.
var ErrClosed = errors.New("mmap: closed")

// File is a file mapped read-only into memory.
type File struct {
	data []byte
	f    *os.File
}

// Open maps the file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &File{f: f}, nil
	}

	data, err := mapFile(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{data: data, f: f}, nil
}

// Len returns the mapped size in bytes.
func (m *File) Len() int64 { return int64(len(m.data)) }

// ReadAt implements io.ReaderAt over the mapping.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.f == nil {
		return 0, ErrClosed
	}

	if off < 0 {
		return 0, errors.New("mmap: negative offset")
	}

	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close unmaps the memory and closes the underlying file. Close is
// idempotent.
func (m *File) Close() error {
	if m == nil || m.f == nil {
		return nil
	}

	var err error
	if m.data != nil {
		err = unmapFile(m.data)
		m.data = nil
	}

	if closeErr := m.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	m.f = nil

	return err
}
