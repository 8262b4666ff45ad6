// Package fileman caches native dataset handles process-wide.
//
// # Why a cache
//
// Scientific workflows open the same files over and over: a dataset of
// hundreds of files is opened once per variable access pattern, and
// network filesystems make every open expensive. At the same time the
// process-wide file descriptor budget is finite. fileman solves both with
// one shared structure:
//
//	Manager ("logical open") --refs--> entry --LRU--> native handle
//
// # Lifecycle
//
// A Manager represents one logical open file and holds a reference from
// New until Close. The native handle is opened on first acquire. When the
// cache exceeds its limit the least recently used handle is closed, but
// its entry and references survive; the next acquire reopens the file
// invisibly. Callers never observe the difference between a cached and a
// reopened handle, apart from the onOpen hook running again.
//
// Managers with equal keys (engine, path, mode, canonical options) share
// one entry and one handle. The last Close for a key closes the handle
// for good.
package fileman
