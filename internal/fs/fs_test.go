package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	require.NoError(t, f.Close())

	newPath := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, newPath))

	info2, err := lfs.Stat(newPath)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info2.Size())

	require.NoError(t, lfs.Remove(newPath))

	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFSWriteLimit(t *testing.T) {
	tmp := t.TempDir()

	ffs := NewFaultyFS(nil)
	ffs.Rule("partial", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(tmp, "partial.bin"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hel"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Crosses the limit: the first two bytes land, then the fault.
	n, err = f.Write([]byte("lo world"))
	require.Error(t, err)
	assert.Equal(t, 2, n)

	_, err = f.Write([]byte("more"))
	require.Error(t, err)

	require.NoError(t, f.Close())
}

func TestFaultyFSUnmatchedPassthrough(t *testing.T) {
	tmp := t.TempDir()

	ffs := NewFaultyFS(nil)
	ffs.Rule("other", Fault{FailAfterBytes: 0})

	f, err := ffs.OpenFile(filepath.Join(tmp, "clean.bin"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("unlimited"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFaultyFSSyncClose(t *testing.T) {
	tmp := t.TempDir()
	boom := errors.New("boom")

	ffs := NewFaultyFS(nil)
	ffs.Rule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.Rule("close", Fault{FailAfterBytes: -1, FailOnClose: true})

	f, err := ffs.OpenFile(filepath.Join(tmp, "sync.bin"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), boom)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(tmp, "close.bin"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Close(), errInjected)
}

func TestFaultyFSRename(t *testing.T) {
	tmp := t.TempDir()

	ffs := NewFaultyFS(nil)
	ffs.Rule(".tmp-", Fault{FailAfterBytes: -1, FailOnRename: true})

	src := filepath.Join(tmp, ".tmp-download")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

	err := ffs.Rename(src, filepath.Join(tmp, "final"))
	assert.ErrorIs(t, err, errInjected)

	// Unmatched renames pass through.
	other := filepath.Join(tmp, "plain")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	assert.NoError(t, ffs.Rename(other, filepath.Join(tmp, "moved")))
}
