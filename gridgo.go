package gridgo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/fileman"
	"github.com/hupe1980/gridgo/locks"
	"github.com/hupe1980/gridgo/meta"
)

// DefaultEngine is the engine used when no WithEngine option is given.
const DefaultEngine = "netcdf"

// Store is a read-only view of one dataset file.
//
// A Store holds a reference on the shared handle cache rather than a
// native handle; the file opens lazily and may be closed and reopened
// by the cache between accesses. Stores are safe for concurrent use.
type Store struct {
	eng     engine.Engine
	ref     string
	path    string
	manager *fileman.Manager
	lock    sync.Locker
	logger  *Logger
	metrics MetricsCollector

	closed atomic.Bool
}

// Open opens the dataset at ref.
func Open(ref string, optFns ...Option) (*Store, error) {
	return OpenContext(context.Background(), ref, optFns...)
}

// OpenContext opens the dataset at ref. The context applies to remote
// resolution through WithSource; native opens are not cancelable.
func OpenContext(ctx context.Context, ref string, optFns ...Option) (*Store, error) {
	opts := options{
		engineName: DefaultEngine,
		mode:       engine.ModeRead,
		logger:     NoopLogger(),
		metrics:    NoopMetricsCollector{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := opts.engine
	if eng == nil {
		registered, ok := engine.Lookup(opts.engineName)
		if !ok {
			return nil, &ErrUnknownEngine{Name: opts.engineName}
		}

		eng = registered
	}

	path := ref
	if opts.source != nil {
		resolved, err := opts.source.Fetch(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("gridgo: resolve %s: %w", ref, err)
		}

		path = resolved
	}

	lock := opts.lock
	if lock == nil {
		lock = locks.Ensure(eng.Lock())
	}

	managerOpts := []fileman.Option{
		fileman.WithMode(opts.mode),
		fileman.WithLock(lock),
		fileman.WithOnOpen(disableMasking),
	}

	if opts.engineOpts != nil {
		managerOpts = append(managerOpts, fileman.WithOptions(opts.engineOpts))
	}

	if opts.cache != nil {
		managerOpts = append(managerOpts, fileman.WithCache(opts.cache))
	}

	manager := fileman.New(eng, path, managerOpts...)
	logger := opts.logger.WithEngine(eng.Name()).WithPath(path)

	// Touch the file once so open errors surface here, not on first read.
	start := time.Now()

	lock.Lock()
	_, err := manager.AcquireLocked()
	lock.Unlock()

	opts.metrics.RecordOpen(time.Since(start), err)

	if err != nil {
		_ = manager.Close()

		return nil, err
	}

	logger.Debug("opened dataset store")

	return &Store{
		eng:     eng,
		ref:     ref,
		path:    path,
		manager: manager,
		lock:    lock,
		logger:  logger,
		metrics: opts.metrics,
	}, nil
}

// disableMasking keeps raw values flowing on every physical open,
// including reopens after cache eviction.
func disableMasking(f engine.File) error {
	return f.SetOption(engine.OptMissingValueMode, engine.MissingValueRaw)
}

// Path returns the local path backing the store. With a remote source
// this is the spooled copy, not the reference.
func (s *Store) Path() string { return s.path }

// Ref returns the reference the store was opened with.
func (s *Store) Ref() string { return s.ref }

// EngineName returns the name of the engine serving the store.
func (s *Store) EngineName() string { return s.eng.Name() }

// withFile runs fn with the open handle while holding the store lock.
func (s *Store) withFile(fn func(engine.File) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	file, err := s.manager.AcquireLocked()
	if err != nil {
		return translateError(err)
	}

	return fn(file)
}

// Variables returns the store's variables in file order.
func (s *Store) Variables() (*Variables, error) {
	vars := newVariables()

	err := s.withFile(func(f engine.File) error {
		for _, name := range f.Variables() {
			v, err := newVariable(s, f, name)
			if err != nil {
				return err
			}

			vars.om.Set(name, v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return vars, nil
}

// Variable returns the variable called name.
func (s *Store) Variable(name string) (*Variable, error) {
	var v *Variable

	err := s.withFile(func(f engine.File) error {
		if !slices.Contains(f.Variables(), name) {
			return &ErrVariableNotFound{Name: name, Path: s.path}
		}

		var err error
		v, err = newVariable(s, f, name)

		return err
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Attributes returns the dataset's global attributes.
func (s *Store) Attributes() (meta.Attributes, error) {
	var attrs meta.Attributes

	err := s.withFile(func(f engine.File) error {
		attrs = f.Attributes()

		return nil
	})
	if err != nil {
		return meta.Attributes{}, err
	}

	return attrs, nil
}

// Dimensions returns the dataset's dimensions in file order.
func (s *Store) Dimensions() (meta.Dimensions, error) {
	var dims meta.Dimensions

	err := s.withFile(func(f engine.File) error {
		dims = f.Dimensions()

		return nil
	})
	if err != nil {
		return meta.Dimensions{}, err
	}

	return dims, nil
}

// Encoding describes dataset-level storage details that survive a
// round trip through the file format.
type Encoding struct {
	// UnlimitedDims lists the dimensions declared growable, in file
	// order.
	UnlimitedDims []string
}

// Encoding returns the dataset's encoding.
func (s *Store) Encoding() (Encoding, error) {
	var enc Encoding

	err := s.withFile(func(f engine.File) error {
		for _, name := range f.Dimensions().Names() {
			if f.Unlimited(name) {
				enc.UnlimitedDims = append(enc.UnlimitedDims, name)
			}
		}

		return nil
	})
	if err != nil {
		return Encoding{}, err
	}

	return enc, nil
}

// Close releases the store's cache reference. The native handle closes
// once the last store sharing it is gone. A second Close returns
// ErrStoreClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStoreClosed
	}

	err := s.manager.Close()
	s.metrics.RecordClose(err)

	if err != nil {
		return translateError(err)
	}

	s.logger.Debug("closed dataset store")

	return nil
}
