package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/gridgo/dtype"
	"github.com/hupe1980/gridgo/indexing"
	"github.com/hupe1980/gridgo/meta"
)

// Mode is the access mode a file is opened with.
type Mode string

const (
	// ModeRead opens a file for reading. It is the only mode every engine
	// must support.
	ModeRead Mode = "r"
)

// Options are engine-specific open options as string pairs. Two option
// sets with equal Canonical forms open interchangeable handles, which is
// what makes them usable in cache keys.
type Options map[string]string

// Canonical returns the options as a stable "k=v,..." string sorted by key.
func (o Options) Canonical() string {
	if len(o) == 0 {
		return ""
	}

	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(o[k])
	}

	return sb.String()
}

// Option names understood across engines. Engines reject names they do
// not understand.
const (
	// OptMissingValueMode controls how an engine presents elements equal
	// to a variable's declared fill value.
	OptMissingValueMode = "missing_value_mode"

	// MissingValueRaw: fill values pass through untouched. Stores force
	// this on every handle they open, fill value handling belongs to the
	// layers above.
	MissingValueRaw = "raw"

	// MissingValueMasked: the engine replaces fill values by its own
	// missing marker.
	MissingValueMasked = "masked"
)

// Engine opens dataset files of one format family.
//
// Open must fail, not block, when the path cannot be served. The returned
// File is not required to be safe for concurrent use: callers serialize
// every call into a File and its Variables with the engine's Lock.
type Engine interface {
	// Name returns the registry name, e.g. "netcdf".
	Name() string

	// Open opens the file at path. Engines that cannot write reject any
	// mode but ModeRead.
	Open(path string, mode Mode, opts Options) (File, error)

	// Lock returns the broadest lock that makes calls into this engine's
	// native machinery safe. Callers must hold it around every call into
	// a File or Variable, including Open and Close.
	Lock() sync.Locker
}

// File is one open dataset handle.
type File interface {
	// Variables lists the variable names in file order.
	Variables() []string

	// Variable resolves a variable by name.
	Variable(name string) (Variable, error)

	// Attributes returns the file-level attributes in file order.
	Attributes() meta.Attributes

	// Dimensions returns the named dimensions in file order.
	Dimensions() meta.Dimensions

	// Unlimited reports whether the named dimension may grow.
	Unlimited(dim string) bool

	// SetOption adjusts a native option on this handle.
	SetOption(name, value string) error

	// Close releases the handle. The handle and every Variable resolved
	// from it are unusable afterwards.
	Close() error
}

// Variable is one named array inside an open file. It stays valid only as
// long as its File is open.
type Variable interface {
	// Dimensions returns the dimension names, one per axis.
	Dimensions() []string

	// Attributes returns the variable's attributes in file order.
	Attributes() meta.Attributes

	// DType returns the element type.
	DType() dtype.DType

	// Shape returns the per-axis lengths. Scalars return an empty shape.
	Shape() []int

	// Scalar extracts the value of a 0-d variable.
	Scalar() (any, error)

	// Section reads one normalized Range per axis and returns the
	// materialized sub-array.
	Section(sec indexing.Section) (*indexing.Block, error)
}
