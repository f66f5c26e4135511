//go:build !linux && !darwin

package mmap

import (
	"io"
	"os"
)

// Platforms without mmap read the file into memory
func mapFile(f *os.File, size int) ([]byte, bool, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}

func unmap([]byte) error { return nil }
