// Package fs abstracts the filesystem operations the download spool
// performs.
//
// Production code uses [Default], a thin wrapper over the os package.
// Tests wrap any [FileSystem] in a [FaultyFS] to fail writes partway
// through, break Sync or Close, or make the final publish rename fail:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.Rule(".tmp-", fs.Fault{FailAfterBytes: 1024})
//	// inject ffs into the component under test
//
// Operations here take no context.Context: local filesystem calls are
// not interruptible at the syscall level. Slow remote reads live behind
// interfaces that do carry contexts.
package fs
