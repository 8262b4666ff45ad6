package fileman

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/locks"
)

// ErrManagerClosed is returned when a closed manager is used, including a
// second Close.
var ErrManagerClosed = errors.New("fileman: manager closed")

type options struct {
	mode   engine.Mode
	opts   engine.Options
	lock   sync.Locker
	cache  *Cache
	onOpen func(engine.File) error
}

// Option configures a Manager.
type Option func(*options)

// WithMode sets the open mode, default ModeRead.
func WithMode(mode engine.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithOptions sets the engine open options.
func WithOptions(opts engine.Options) Option {
	return func(o *options) {
		o.opts = opts
	}
}

// WithLock sets the lock guarding opens and closes. The default is the
// engine's lock.
func WithLock(l sync.Locker) Option {
	return func(o *options) {
		o.lock = l
	}
}

// WithCache sets the handle cache, default the process-wide cache.
func WithCache(c *Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithOnOpen installs a hook running after every physical open, including
// reopens after eviction. An error from the hook fails the acquire and
// closes the fresh handle.
func WithOnOpen(fn func(engine.File) error) Option {
	return func(o *options) {
		o.onOpen = fn
	}
}

// Manager is one logical open file. It holds a reference on the handle
// cache from New until Close; the native handle itself is opened lazily
// and may come and go with cache pressure in between.
//
// Managers with equal keys share one handle, so a file opened twice with
// the same engine, path, mode and options costs a single native handle.
type Manager struct {
	eng    engine.Engine
	path   string
	mode   engine.Mode
	opts   engine.Options
	lock   sync.Locker
	cache  *Cache
	onOpen func(engine.File) error
	key    Key
	closed atomic.Bool
}

// New creates a manager for path and retains its cache reference.
// No file is opened yet.
func New(eng engine.Engine, path string, opts ...Option) *Manager {
	o := options{
		mode:  engine.ModeRead,
		cache: Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.lock == nil {
		o.lock = locks.Ensure(eng.Lock())
	}

	m := &Manager{
		eng:    eng,
		path:   path,
		mode:   o.mode,
		opts:   o.opts,
		lock:   o.lock,
		cache:  o.cache,
		onOpen: o.onOpen,
		key:    KeyFor(eng, path, o.mode, o.opts),
	}

	m.cache.retain(m.key)

	return m
}

// Key returns the cache key of this manager.
func (m *Manager) Key() Key { return m.key }

// Path returns the managed path.
func (m *Manager) Path() string { return m.path }

// Acquire returns the open handle, taking the manager lock around any
// physical open. The handle stays valid until the cache evicts it or the
// last reference is released; callers doing data access should hold the
// lock themselves and use AcquireLocked instead.
func (m *Manager) Acquire() (engine.File, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.AcquireLocked()
}

// AcquireLocked is Acquire for callers already holding the manager lock.
func (m *Manager) AcquireLocked() (engine.File, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	return m.cache.acquire(m.key, m.open)
}

// open performs one physical open and runs the onOpen hook.
func (m *Manager) open() (engine.File, error) {
	file, err := m.eng.Open(m.path, m.mode, m.opts)
	if err != nil {
		return nil, fmt.Errorf("fileman: open %s: %w", m.path, err)
	}

	if m.onOpen != nil {
		if err := m.onOpen(file); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("fileman: prepare %s: %w", m.path, err)
		}
	}

	return file, nil
}

// Close releases this manager's reference. The native handle closes when
// the last manager for the key releases. A second Close returns
// ErrManagerClosed.
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrManagerClosed
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	return m.cache.release(m.key)
}
