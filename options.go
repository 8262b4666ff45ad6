package gridgo

import (
	"log/slog"
	"sync"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/fileman"
	"github.com/hupe1980/gridgo/source"
)

type options struct {
	engineName string
	engine     engine.Engine
	mode       engine.Mode
	engineOpts engine.Options
	lock       sync.Locker
	cache      *fileman.Cache
	source     *source.Spool
	logger     *Logger
	metrics    MetricsCollector
}

// Option configures Open behavior.
type Option func(*options)

// WithEngine selects the registered engine by name.
//
// The default is DefaultEngine. Engines register themselves when their
// package is imported:
//
//	import _ "github.com/hupe1980/gridgo/engine/netcdf"
func WithEngine(name string) Option {
	return func(o *options) {
		o.engineName = name
	}
}

// WithEngineInstance uses eng directly, bypassing the registry. Useful
// for engines constructed with non-default settings and for tests.
func WithEngineInstance(eng engine.Engine) Option {
	return func(o *options) {
		o.engine = eng
	}
}

// WithMode sets the open mode. The default is read-only.
func WithMode(mode engine.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithEngineOptions passes engine-specific open options, e.g. the
// netcdf engine's "mmap". Stores with different options do not share
// native handles.
func WithEngineOptions(opts engine.Options) Option {
	return func(o *options) {
		o.engineOpts = opts
	}
}

// WithLock overrides the lock serializing native access for this store.
// The default is the engine's lock. Overriding it on a library that is
// not thread-safe is on the caller.
func WithLock(l sync.Locker) Option {
	return func(o *options) {
		o.lock = l
	}
}

// WithCache sets the handle cache. The default is the process-wide
// cache shared by all stores.
func WithCache(c *fileman.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithSource resolves remote references through sp before opening. The
// OpenContext context applies to this resolution.
func WithSource(sp *source.Spool) Option {
	return func(o *options) {
		o.source = sp
	}
}

// WithLogger sets the logger.
//
// If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel enables text logging to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}
