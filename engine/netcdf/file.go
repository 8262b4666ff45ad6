package netcdf

import (
	"fmt"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/meta"
)

type file struct {
	path  string
	group api.Group

	dimsOnce sync.Once
	dims     meta.Dimensions

	closed bool
}

var _ engine.File = (*file)(nil)

func (f *file) Variables() []string {
	if f.closed {
		return nil
	}

	return f.group.ListVariables()
}

func (f *file) Variable(name string) (engine.Variable, error) {
	if f.closed {
		return nil, fmt.Errorf("netcdf: %s: handle closed", f.path)
	}

	vg, err := f.group.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("netcdf: %s: variable %q: %w", f.path, name, err)
	}

	return newVariable(f.path, name, vg)
}

func (f *file) Attributes() meta.Attributes {
	if f.closed {
		return meta.Attributes{}
	}

	return attributes(f.group.Attributes())
}

// Dimensions aggregates dimension sizes across variables in first
// appearance order. The underlying reader keeps no standalone dimension
// table, so dimensions used by no variable are invisible here.
func (f *file) Dimensions() meta.Dimensions {
	if f.closed {
		return meta.Dimensions{}
	}

	f.dimsOnce.Do(func() {
		var (
			dims []meta.Dim
			seen = make(map[string]bool)
		)

		for _, name := range f.group.ListVariables() {
			v, err := f.Variable(name)
			if err != nil {
				continue
			}

			ncVar := v.(*variable)
			for i, dim := range ncVar.dims {
				if seen[dim] {
					continue
				}

				seen[dim] = true
				dims = append(dims, meta.Dim{Name: dim, Size: ncVar.shape[i]})
			}
		}

		f.dims = meta.NewDimensions(dims...)
	})

	return f.dims
}

// Unlimited reports false for every dimension: the underlying reader does
// not expose which dimensions were declared growable.
func (f *file) Unlimited(string) bool { return false }

func (f *file) SetOption(name, value string) error {
	if f.closed {
		return fmt.Errorf("netcdf: %s: handle closed", f.path)
	}

	switch name {
	case engine.OptMissingValueMode:
		// Values are always served raw, masking never happens here.
		if value == engine.MissingValueRaw {
			return nil
		}

		return fmt.Errorf("netcdf: missing value mode %q not supported", value)
	default:
		return fmt.Errorf("netcdf: unknown option %q", name)
	}
}

func (f *file) Close() error {
	if f.closed {
		return fmt.Errorf("netcdf: %s: handle closed twice", f.path)
	}

	f.closed = true
	f.group.Close()

	return nil
}

// attributes copies an api.AttributeMap into an ordered view.
func attributes(am api.AttributeMap) meta.Attributes {
	if am == nil {
		return meta.Attributes{}
	}

	keys := am.Keys()

	attrs := make([]meta.Attr, 0, len(keys))
	for _, k := range keys {
		if v, ok := am.Get(k); ok {
			attrs = append(attrs, meta.Attr{Name: k, Value: v})
		}
	}

	return meta.NewAttributes(attrs...)
}
