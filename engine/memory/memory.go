// Package memory provides an in-memory dataset engine.
//
// Datasets are declared as fixtures and served entirely from RAM, which
// makes the engine the reference implementation for tests, examples and
// synthetic data. It additionally counts opens, closes and option calls so
// tests can observe handle lifecycles.
package memory

import (
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/hupe1980/gridgo/dtype"
	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/indexing"
	"github.com/hupe1980/gridgo/locks"
	"github.com/hupe1980/gridgo/meta"
)

// Dataset declares one in-memory file.
type Dataset struct {
	// Attrs are the file-level attributes in order.
	Attrs []meta.Attr

	// Dims are the named dimensions in order.
	Dims []meta.Dim

	// Unlimited names the dimensions that may grow.
	Unlimited []string

	// Vars are the variables in order.
	Vars []Var
}

// Var declares one variable of a Dataset.
type Var struct {
	Name string

	// Dims name the axes. Every name must appear in the dataset's Dims.
	// A variable without dims is a scalar.
	Dims []string

	// Values holds the flat row-major data, or a single value for scalars.
	Values any

	// Attrs are the variable's attributes in order.
	Attrs []meta.Attr
}

// ReadHook observes every Section and Scalar call served by the engine.
type ReadHook func(path, variable string)

// Option configures the engine.
type Option func(*Engine)

// WithName overrides the registry name, default "memory".
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithLock overrides the engine lock. The default is the process-wide
// lock for the engine's name.
func WithLock(l sync.Locker) Option {
	return func(e *Engine) {
		e.lock = l
	}
}

// WithReadHook installs a hook observing every data read.
func WithReadHook(h ReadHook) Option {
	return func(e *Engine) {
		e.hook = h
	}
}

// Engine serves declared datasets from memory.
type Engine struct {
	name string
	lock sync.Locker
	hook ReadHook

	mu       sync.Mutex
	files    map[string]*dataset
	failOpen map[string]error
	opens    map[string]int
	closes   map[string]int
	options  map[string][]string
	live     int
}

var _ engine.Engine = (*Engine)(nil)

// New creates an empty in-memory engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		name:     "memory",
		files:    make(map[string]*dataset),
		failOpen: make(map[string]error),
		opens:    make(map[string]int),
		closes:   make(map[string]int),
		options:  make(map[string][]string),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.lock == nil {
		e.lock = locks.ForEngine(e.name)
	}

	return e
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return e.name }

// Lock implements engine.Engine.
func (e *Engine) Lock() sync.Locker { return e.lock }

// Add declares the dataset served at path, replacing any previous one.
func (e *Engine) Add(path string, ds Dataset) error {
	compiled, err := compile(ds)
	if err != nil {
		return fmt.Errorf("memory: add %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.files[path] = compiled

	return nil
}

// MustAdd is Add, panicking on invalid fixtures.
func (e *Engine) MustAdd(path string, ds Dataset) {
	if err := e.Add(path, ds); err != nil {
		panic(err)
	}
}

// FailOpens makes every following Open of path fail with err.
// A nil err clears the fault.
func (e *Engine) FailOpens(path string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err == nil {
		delete(e.failOpen, path)
		return
	}

	e.failOpen[path] = err
}

// Open implements engine.Engine.
func (e *Engine) Open(path string, mode engine.Mode, opts engine.Options) (engine.File, error) {
	if mode != engine.ModeRead {
		return nil, fmt.Errorf("memory: mode %q not supported, engine is read-only", mode)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.failOpen[path]; err != nil {
		return nil, err
	}

	ds, ok := e.files[path]
	if !ok {
		return nil, fmt.Errorf("memory: open %s: %w", path, fs.ErrNotExist)
	}

	e.opens[path]++
	e.live++

	return &file{eng: e, path: path, ds: ds}, nil
}

// Opens returns how many times path has been physically opened.
func (e *Engine) Opens(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opens[path]
}

// Closes returns how many times a handle for path has been closed.
func (e *Engine) Closes(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closes[path]
}

// Live returns the number of currently open handles.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.live
}

// OptionCalls returns every SetOption call made against handles of path,
// as "name=value" strings in call order.
func (e *Engine) OptionCalls(path string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.options[path])
}

func (e *Engine) recordClose(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closes[path]++
	e.live--
}

func (e *Engine) recordOption(path, name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.options[path] = append(e.options[path], name+"="+value)
}

// dataset is a compiled fixture: metadata views plus one block per variable.
type dataset struct {
	attrs     meta.Attributes
	dims      meta.Dimensions
	unlimited map[string]bool
	order     []string
	vars      map[string]*variable
}

func compile(ds Dataset) (*dataset, error) {
	out := &dataset{
		attrs:     meta.NewAttributes(ds.Attrs...),
		dims:      meta.NewDimensions(ds.Dims...),
		unlimited: make(map[string]bool, len(ds.Unlimited)),
		vars:      make(map[string]*variable, len(ds.Vars)),
	}

	for _, name := range ds.Unlimited {
		if _, ok := out.dims.Get(name); !ok {
			return nil, fmt.Errorf("unlimited dimension %q not declared", name)
		}

		out.unlimited[name] = true
	}

	for _, v := range ds.Vars {
		if v.Name == "" {
			return nil, fmt.Errorf("variable without name")
		}

		if _, dup := out.vars[v.Name]; dup {
			return nil, fmt.Errorf("variable %q declared twice", v.Name)
		}

		cv, err := compileVar(v, out.dims)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}

		out.order = append(out.order, v.Name)
		out.vars[v.Name] = cv
	}

	return out, nil
}

func compileVar(v Var, dims meta.Dimensions) (*variable, error) {
	if len(v.Dims) == 0 {
		blk, err := indexing.NewScalar(v.Values)
		if err != nil {
			return nil, err
		}

		return &variable{dims: nil, attrs: meta.NewAttributes(v.Attrs...), block: blk}, nil
	}

	shape := make([]int, len(v.Dims))
	for i, name := range v.Dims {
		size, ok := dims.Get(name)
		if !ok {
			return nil, fmt.Errorf("dimension %q not declared", name)
		}

		shape[i] = size
	}

	blk, err := indexing.NewBlock(dtype.Of(v.Values), shape, v.Values)
	if err != nil {
		return nil, err
	}

	return &variable{
		dims:  slices.Clone(v.Dims),
		attrs: meta.NewAttributes(v.Attrs...),
		block: blk,
	}, nil
}

type variable struct {
	dims  []string
	attrs meta.Attributes
	block *indexing.Block
}

// file is one open handle. Handles of the same path share the compiled
// dataset, mirroring how native libraries share underlying storage.
type file struct {
	eng    *Engine
	path   string
	ds     *dataset
	closed bool
}

var _ engine.File = (*file)(nil)

func (f *file) Variables() []string {
	if f.closed {
		return nil
	}

	return slices.Clone(f.ds.order)
}

func (f *file) Variable(name string) (engine.Variable, error) {
	if f.closed {
		return nil, fmt.Errorf("memory: %s: handle closed", f.path)
	}

	v, ok := f.ds.vars[name]
	if !ok {
		return nil, fmt.Errorf("memory: %s: no variable %q", f.path, name)
	}

	return &varHandle{f: f, name: name, v: v}, nil
}

func (f *file) Attributes() meta.Attributes { return f.ds.attrs }

func (f *file) Dimensions() meta.Dimensions { return f.ds.dims }

func (f *file) Unlimited(dim string) bool { return f.ds.unlimited[dim] }

func (f *file) SetOption(name, value string) error {
	if f.closed {
		return fmt.Errorf("memory: %s: handle closed", f.path)
	}

	switch name {
	case engine.OptMissingValueMode:
		if value != engine.MissingValueRaw && value != engine.MissingValueMasked {
			return fmt.Errorf("memory: bad %s value %q", name, value)
		}
	default:
		return fmt.Errorf("memory: unknown option %q", name)
	}

	f.eng.recordOption(f.path, name, value)

	return nil
}

func (f *file) Close() error {
	if f.closed {
		return fmt.Errorf("memory: %s: handle closed twice", f.path)
	}

	f.closed = true
	f.eng.recordClose(f.path)

	return nil
}

type varHandle struct {
	f    *file
	name string
	v    *variable
}

var _ engine.Variable = (*varHandle)(nil)

func (h *varHandle) Dimensions() []string { return slices.Clone(h.v.dims) }

func (h *varHandle) Attributes() meta.Attributes { return h.v.attrs }

func (h *varHandle) DType() dtype.DType { return h.v.block.DType() }

func (h *varHandle) Shape() []int { return h.v.block.Shape() }

func (h *varHandle) Scalar() (any, error) {
	if h.f.closed {
		return nil, fmt.Errorf("memory: %s: handle closed", h.f.path)
	}

	if h.f.eng.hook != nil {
		h.f.eng.hook(h.f.path, h.name)
	}

	return h.v.block.Scalar()
}

func (h *varHandle) Section(sec indexing.Section) (*indexing.Block, error) {
	if h.f.closed {
		return nil, fmt.Errorf("memory: %s: handle closed", h.f.path)
	}

	if h.f.eng.hook != nil {
		h.f.eng.hook(h.f.path, h.name)
	}

	return h.v.block.Section(sec)
}
