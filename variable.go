package gridgo

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hupe1980/gridgo/dtype"
	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/indexing"
	"github.com/hupe1980/gridgo/meta"
)

// Variable is one named array of a store. Structure is captured when
// the variable is resolved; data reads go back through the store's
// handle cache every time, so a Variable stays usable across cache
// evictions and reopenings of the underlying file.
type Variable struct {
	name  string
	dims  []string
	attrs meta.Attributes
	arr   *engineArray
}

func newVariable(s *Store, f engine.File, name string) (*Variable, error) {
	v, err := f.Variable(name)
	if err != nil {
		return nil, err
	}

	return &Variable{
		name:  name,
		dims:  v.Dimensions(),
		attrs: v.Attributes(),
		arr: &engineArray{
			store: s,
			name:  name,
			shape: v.Shape(),
			dt:    v.DType(),
		},
	}, nil
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Dimensions returns the dimension names, one per axis.
func (v *Variable) Dimensions() []string {
	return append([]string(nil), v.dims...)
}

// Attributes returns the variable's attributes in file order.
func (v *Variable) Attributes() meta.Attributes { return v.attrs }

// Shape returns the per-axis lengths. Scalars return an empty shape.
func (v *Variable) Shape() []int { return v.arr.Shape() }

// DType returns the element type.
func (v *Variable) DType() dtype.DType { return v.arr.DType() }

// Data returns a lazy view over the whole variable. Selections on the
// view compose without reading; the file is touched once per Load or
// Index.
func (v *Variable) Data() *indexing.Lazy {
	return indexing.NewLazy(v.arr)
}

// Read materializes one selection. An empty key reads the whole
// variable; for a 0-d variable it takes the native scalar path.
func (v *Variable) Read(sel ...indexing.Selector) (*indexing.Block, error) {
	return v.arr.Index(indexing.Key(sel))
}

// Variables is an ordered collection of a store's variables.
type Variables struct {
	om *orderedmap.OrderedMap[string, *Variable]
}

func newVariables() *Variables {
	return &Variables{om: orderedmap.New[string, *Variable]()}
}

// Len returns the number of variables.
func (vs *Variables) Len() int { return vs.om.Len() }

// Get returns the variable called name.
func (vs *Variables) Get(name string) (*Variable, bool) {
	return vs.om.Get(name)
}

// Names returns the variable names in file order.
func (vs *Variables) Names() []string {
	names := make([]string, 0, vs.om.Len())
	for pair := vs.om.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// All iterates the variables in file order.
func (vs *Variables) All() iter.Seq2[string, *Variable] {
	return func(yield func(string, *Variable) bool) {
		for pair := vs.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}
