package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var errInjected = errors.New("fs: injected fault")

// Fault defines failure behavior for files whose name matches a rule.
type Fault struct {
	FailAfterBytes int64 // fail writes once this many bytes hit the file, -1 disables
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}

	return errInjected
}

// FaultyFS wraps a FileSystem and injects errors into operations on
// files whose path contains a registered pattern.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

var _ FileSystem = (*FaultyFS)(nil)

// NewFaultyFS wraps fsys, or Default when fsys is nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}

	return &FaultyFS{FS: fsys, rules: make(map[string]Fault)}
}

// Rule registers fault behavior for paths containing pattern.
func (f *FaultyFS) Rule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules[pattern] = fault
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for pattern, fault := range f.rules {
		if strings.Contains(name, pattern) {
			return fault, true
		}
	}

	return Fault{}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	fault, ok := f.match(name)
	if !ok {
		return file, nil
	}

	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error { return f.FS.Remove(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(oldpath); ok && fault.FailOnRename {
		return fault.err()
	}

	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

type faultyFile struct {
	File
	fault   Fault
	written atomic.Int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	limit := ff.fault.FailAfterBytes
	if limit >= 0 && ff.written.Load()+int64(len(p)) > limit {
		room := limit - ff.written.Load()
		if room <= 0 {
			return 0, ff.fault.err()
		}

		n, err := ff.File.Write(p[:room])
		ff.written.Add(int64(n))

		if err != nil {
			return n, err
		}

		return n, ff.fault.err()
	}

	n, err := ff.File.Write(p)
	ff.written.Add(int64(n))

	return n, err
}

func (ff *faultyFile) WriteAt(p []byte, off int64) (int, error) {
	limit := ff.fault.FailAfterBytes
	if limit >= 0 && ff.written.Load()+int64(len(p)) > limit {
		return 0, ff.fault.err()
	}

	n, err := ff.File.WriteAt(p, off)
	ff.written.Add(int64(n))

	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}

	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		ff.File.Close()

		return ff.fault.err()
	}

	return ff.File.Close()
}
