// Package mmap maps column files into memory for the format readers
package mmap

import (
	"io"
	"os"
	"sync"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// File is a read-only mapping of a whole file. It implements io.ReaderAt.
type File struct {
	path   string
	data   []byte
	mapped bool
	once   sync.Once
	err    error
}

// Open maps path. Empty files are not mapped and read as zero bytes.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller chooses the file
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").WithDetail("path", path)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").WithDetail("path", path)
	}
	if stat.Size() == 0 {
		return &File{path: path}, nil
	}

	data, mapped, err := mapFile(f, int(stat.Size()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map file").WithDetail("path", path)
	}
	return &File{path: path, data: data, mapped: mapped}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *File) Bytes() []byte { return m.data }

// Len returns the file size
func (m *File) Len() int { return len(m.data) }

// Path returns the mapped path
func (m *File) Path() string { return m.path }

// ReadAt copies mapped bytes into p
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Newf(errors.ErrorTypeFile, "negative offset %d", off)
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

// Close unmaps the file. It is safe to call more than once.
func (m *File) Close() error {
	m.once.Do(func() {
		if m.mapped {
			m.err = unmap(m.data)
		}
		m.data = nil
	})
	return m.err
}
