// Package locks builds the lock hierarchies that guard native format
// libraries.
//
// Many scientific I/O libraries are not reentrant, and some share global
// state with each other (NetCDF4 files route through the HDF5 machinery).
// Engines therefore declare the broadest composite lock that makes their
// native calls safe, combining the process-wide locks of every library
// involved. Composites acquire constituents in a fixed order and release
// in reverse, so two composites sharing constituents cannot deadlock.
//
// The process-wide locks are created once and only handed out by
// reference; there is no way to replace or reset them.
package locks

import (
	"reflect"
	"sync"
)

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

var noop = noopLocker{}

// Noop returns a locker whose Lock and Unlock do nothing.
func Noop() sync.Locker { return noop }

// Ensure returns l, or a no-op locker when l is nil.
func Ensure(l sync.Locker) sync.Locker {
	if l == nil {
		return Noop()
	}

	return l
}

// Composite acquires a fixed set of locks in order and releases them in
// reverse order. Build one with Combine.
type Composite struct {
	locks []sync.Locker
}

// Lock acquires all constituent locks in combination order.
func (c *Composite) Lock() {
	for _, l := range c.locks {
		l.Lock()
	}
}

// Unlock releases all constituent locks in reverse order.
func (c *Composite) Unlock() {
	for i := len(c.locks) - 1; i >= 0; i-- {
		c.locks[i].Unlock()
	}
}

// Len returns the number of constituent locks.
func (c *Composite) Len() int { return len(c.locks) }

// Combine merges lockers into one. Nested composites are flattened, no-op
// and nil lockers are dropped, and duplicates are acquired only once.
// Combining zero effective lockers yields a no-op, a single one is
// returned as is.
func Combine(lockers ...sync.Locker) sync.Locker {
	var flat []sync.Locker
	for _, l := range lockers {
		flat = appendLocker(flat, l)
	}

	switch len(flat) {
	case 0:
		return Noop()
	case 1:
		return flat[0]
	default:
		return &Composite{locks: flat}
	}
}

func appendLocker(dst []sync.Locker, l sync.Locker) []sync.Locker {
	if l == nil {
		return dst
	}

	if _, ok := l.(noopLocker); ok {
		return dst
	}

	if c, ok := l.(*Composite); ok {
		for _, inner := range c.locks {
			dst = appendLocker(dst, inner)
		}

		return dst
	}

	if isComparable(l) {
		for _, have := range dst {
			if isComparable(have) && have == l {
				return dst
			}
		}
	}

	return append(dst, l)
}

// isComparable guards the identity check: comparing interface values whose
// dynamic type is not comparable panics.
func isComparable(l sync.Locker) bool {
	return reflect.TypeOf(l).Comparable()
}

var (
	hdf5Lock    = sync.OnceValue(func() sync.Locker { return new(sync.Mutex) })
	netcdfcLock = sync.OnceValue(func() sync.Locker { return new(sync.Mutex) })

	enginesMu   sync.Mutex
	engineLocks = make(map[string]sync.Locker)
)

// HDF5 returns the process-wide lock serializing calls into HDF5-backed
// libraries. Every caller receives the same lock.
func HDF5() sync.Locker { return hdf5Lock() }

// NetCDFC returns the process-wide lock serializing calls into the NetCDF-C
// family of libraries. Every caller receives the same lock.
func NetCDFC() sync.Locker { return netcdfcLock() }

// ForEngine returns the process-wide lock dedicated to the named engine,
// creating it on first use. Every caller receives the same lock for a name.
func ForEngine(name string) sync.Locker {
	enginesMu.Lock()
	defer enginesMu.Unlock()

	l, ok := engineLocks[name]
	if !ok {
		l = new(sync.Mutex)
		engineLocks[name] = l
	}

	return l
}
