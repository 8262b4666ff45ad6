package fileman

import (
	"container/list"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/gridgo/engine"
)

// DefaultMaxOpen is the handle limit of the process-wide default cache.
const DefaultMaxOpen = 128

var errNotRetained = errors.New("fileman: key not retained")

// entry tracks one logical file. It exists while any manager holds a
// reference; file is non-nil only while the handle is physically open.
type entry struct {
	key  Key
	file engine.File
	refs int
	elem *list.Element
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a process-wide registry of open dataset handles.
//
// It bounds the number of simultaneously open handles with an LRU policy.
// Reference counts and open handles are tracked independently: evicting a
// handle closes it but keeps its entry, and the next acquire transparently
// reopens it. An entry disappears only when the last reference is
// released.
type Cache struct {
	mu      sync.Mutex
	maxOpen int
	entries map[Key]*entry
	lru     *list.List
	stats   Stats
	group   singleflight.Group
}

// NewCache creates a cache holding at most maxOpen open handles.
// Limits below 1 are raised to 1.
func NewCache(maxOpen int) *Cache {
	if maxOpen < 1 {
		maxOpen = 1
	}

	return &Cache{
		maxOpen: maxOpen,
		entries: make(map[Key]*entry),
		lru:     list.New(),
	}
}

var defaultCache = sync.OnceValue(func() *Cache {
	return NewCache(DefaultMaxOpen)
})

// Default returns the shared process-wide cache. It is created once on
// first use and never replaced.
func Default() *Cache {
	return defaultCache()
}

// Len returns the number of currently open handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Refs returns the reference count for a key.
func (c *Cache) Refs(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		return ent.refs
	}

	return 0
}

// Stats returns a snapshot of the cumulative counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// retain adds a reference to key, creating its entry if needed.
func (c *Cache) retain(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		ent = &entry{key: key}
		c.entries[key] = ent
	}

	ent.refs++
}

// release drops one reference. Dropping the last reference removes the
// entry and closes the handle if it is open; the close error is returned.
func (c *Cache) release(key Key) error {
	c.mu.Lock()

	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return errNotRetained
	}

	ent.refs--
	if ent.refs > 0 {
		c.mu.Unlock()
		return nil
	}

	delete(c.entries, key)

	file := ent.file
	if ent.elem != nil {
		c.lru.Remove(ent.elem)
		ent.elem = nil
		ent.file = nil
	}

	c.mu.Unlock()

	if file != nil {
		return file.Close()
	}

	return nil
}

// acquire returns the open handle for key, opening it through open when
// it is missing or was evicted. Concurrent opens of one key collapse into
// a single call.
func (c *Cache) acquire(key Key, open func() (engine.File, error)) (engine.File, error) {
	c.mu.Lock()

	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, errNotRetained
	}

	if ent.file != nil {
		c.lru.MoveToFront(ent.elem)
		c.stats.Hits++
		file := ent.file
		c.mu.Unlock()

		return file, nil
	}

	c.stats.Misses++
	c.mu.Unlock()

	v, err, _ := c.group.Do(key.id(), func() (any, error) {
		// A concurrent flight may have installed the handle already.
		c.mu.Lock()
		if ent, ok := c.entries[key]; ok && ent.file != nil {
			c.lru.MoveToFront(ent.elem)
			file := ent.file
			c.mu.Unlock()

			return file, nil
		}
		c.mu.Unlock()

		file, err := open()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		ent, ok := c.entries[key]
		if !ok {
			// Released while opening. Only possible when a manager is
			// used concurrently with its own Close.
			c.mu.Unlock()
			_ = file.Close()

			return nil, errNotRetained
		}

		ent.file = file
		ent.elem = c.lru.PushFront(ent)
		victims := c.evictLocked()
		c.mu.Unlock()

		closeAll(victims)

		return file, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(engine.File), nil
}

// evictLocked trims the LRU list down to maxOpen, detaching the oldest
// handles. Callers close the victims after releasing the cache mutex.
func (c *Cache) evictLocked() []engine.File {
	var victims []engine.File

	for c.lru.Len() > c.maxOpen {
		elem := c.lru.Back()
		if elem == nil {
			break
		}

		ent := c.lru.Remove(elem).(*entry)
		ent.elem = nil

		if ent.file != nil {
			victims = append(victims, ent.file)
			ent.file = nil
		}

		c.stats.Evictions++
	}

	return victims
}

// closeAll closes evicted handles. Eviction runs on whichever goroutine
// overflowed the cache, which may already hold an engine lock sharing
// constituents with the victim's, so victims are closed without taking
// engine locks and close errors are not reported here.
func closeAll(files []engine.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
