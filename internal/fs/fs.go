package fs

import (
	"io"
	"os"
)

// File is an open spool file. Fetchers write parts through WriteAt,
// possibly in parallel and out of order; decompression rewinds with Seek
// and streams through Read. Sync precedes the rename that publishes a
// download.
type File interface {
	io.Reader
	io.Writer
	io.WriterAt
	io.Seeker
	io.Closer
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem is the surface the spool needs from a file system. Tests
// swap in FaultyFS to exercise failed downloads and torn publishes.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
}

// LocalFS is the os-backed FileSystem.
type LocalFS struct{}

var _ FileSystem = LocalFS{}

func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Default is the local file system.
var Default FileSystem = LocalFS{}
