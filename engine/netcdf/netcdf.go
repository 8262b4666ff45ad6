// Package netcdf provides the NetCDF dataset engine.
//
// It reads classic (CDF) and NetCDF4/HDF5 files through the pure-Go
// reader github.com/batchatco/go-native-netcdf. Register happens at
// import:
//
//	import _ "github.com/hupe1980/gridgo/engine/netcdf"
//
// The engine serializes all native calls behind a composite of the
// process-wide HDF5 and NetCDF locks plus its own dedicated lock, so it
// shares correctly with any other engine touching the same libraries.
package netcdf

import (
	"fmt"
	"io"
	"sync"

	nc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/internal/mmap"
	"github.com/hupe1980/gridgo/locks"
)

// OptMmap maps the file into memory instead of streaming it through
// buffered reads. Values "true" or "false".
const OptMmap = "mmap"

func init() {
	engine.Register(New())
}

// Engine reads NetCDF files.
type Engine struct {
	open       func(path string) (api.Group, error)
	openReader func(rsc api.ReadSeekerCloser) (api.Group, error)
}

var _ engine.Engine = (*Engine)(nil)

// New creates the engine. Most callers use the registered instance via
// the engine registry instead.
func New() *Engine {
	return &Engine{
		open:       nc.Open,
		openReader: nc.New,
	}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "netcdf" }

// Lock implements engine.Engine. NetCDF4 files route through HDF5
// machinery, so the composite covers both library families.
func (e *Engine) Lock() sync.Locker {
	return locks.Combine(locks.HDF5(), locks.NetCDFC(), locks.ForEngine(e.Name()))
}

// Open implements engine.Engine.
func (e *Engine) Open(path string, mode engine.Mode, opts engine.Options) (engine.File, error) {
	if mode != engine.ModeRead {
		return nil, fmt.Errorf("netcdf: mode %q not supported, engine is read-only", mode)
	}

	useMmap := false
	for k, v := range opts {
		switch k {
		case OptMmap:
			switch v {
			case "true":
				useMmap = true
			case "false":
			default:
				return nil, fmt.Errorf("netcdf: bad %s value %q", OptMmap, v)
			}
		case engine.OptMissingValueMode:
			if v != engine.MissingValueRaw {
				return nil, fmt.Errorf("netcdf: missing value mode %q not supported", v)
			}
		default:
			return nil, fmt.Errorf("netcdf: unknown option %q", k)
		}
	}

	group, err := e.openGroup(path, useMmap)
	if err != nil {
		return nil, fmt.Errorf("netcdf: open %s: %w", path, err)
	}

	return &file{path: path, group: group}, nil
}

func (e *Engine) openGroup(path string, useMmap bool) (api.Group, error) {
	if !useMmap {
		return e.open(path)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	// The reader takes ownership of the mapping and unmaps it on Close.
	rsc := readSeekerCloser{
		SectionReader: io.NewSectionReader(m, 0, m.Len()),
		Closer:        m,
	}

	group, err := e.openReader(rsc)
	if err != nil {
		m.Close()
		return nil, err
	}

	return group, nil
}

type readSeekerCloser struct {
	*io.SectionReader
	io.Closer
}
