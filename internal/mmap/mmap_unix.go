//go:build !windows

package mmap

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps size bytes of f read-only. Format readers seek between
// the header and scattered variable offsets, so the mapping is advised
// for random access; the advice is best effort.
func mapFile(f *os.File, size int64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("mmap: %d bytes exceed the address space", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	_ = unix.Madvise(data, unix.MADV_RANDOM)

	return data, nil
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}
