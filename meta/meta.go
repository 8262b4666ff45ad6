// Package meta provides ordered, read-only views of dataset metadata.
//
// Scientific file formats define attributes and dimensions in a meaningful
// order, and tools that round-trip files expect that order back. Attributes
// and Dimensions preserve insertion order exactly and expose no mutation,
// so a view handed out by a store can be shared freely.
package meta

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attr is a single named attribute value.
type Attr struct {
	Name  string
	Value any
}

// Attributes is an ordered, immutable collection of named attribute values.
// The zero value is an empty collection.
type Attributes struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewAttributes builds an attribute view preserving the given order.
// Later duplicates overwrite earlier values but keep the first position.
func NewAttributes(attrs ...Attr) Attributes {
	om := orderedmap.New[string, any]()
	for _, a := range attrs {
		om.Set(a.Name, a.Value)
	}

	return Attributes{om: om}
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	if a.om == nil {
		return 0
	}

	return a.om.Len()
}

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (any, bool) {
	if a.om == nil {
		return nil, false
	}

	return a.om.Get(name)
}

// Keys returns the attribute names in insertion order.
func (a Attributes) Keys() []string {
	if a.om == nil {
		return nil
	}

	keys := make([]string, 0, a.om.Len())
	for pair := a.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// All iterates over attributes in insertion order.
func (a Attributes) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if a.om == nil {
			return
		}

		for pair := a.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Map returns a fresh name to value map. Mutating it does not affect the view.
func (a Attributes) Map() map[string]any {
	m := make(map[string]any, a.Len())
	for k, v := range a.All() {
		m[k] = v
	}

	return m
}

// Dim is a single named dimension with its length.
type Dim struct {
	Name string
	Size int
}

// Dimensions is an ordered, immutable collection of named dimension sizes.
// The zero value is an empty collection.
type Dimensions struct {
	om *orderedmap.OrderedMap[string, int]
}

// NewDimensions builds a dimension view preserving the given order.
func NewDimensions(dims ...Dim) Dimensions {
	om := orderedmap.New[string, int]()
	for _, d := range dims {
		om.Set(d.Name, d.Size)
	}

	return Dimensions{om: om}
}

// Len returns the number of dimensions.
func (d Dimensions) Len() int {
	if d.om == nil {
		return 0
	}

	return d.om.Len()
}

// Get returns the size of the named dimension.
func (d Dimensions) Get(name string) (int, bool) {
	if d.om == nil {
		return 0, false
	}

	return d.om.Get(name)
}

// Names returns the dimension names in insertion order.
func (d Dimensions) Names() []string {
	if d.om == nil {
		return nil
	}

	names := make([]string, 0, d.om.Len())
	for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// All iterates over dimensions in insertion order.
func (d Dimensions) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		if d.om == nil {
			return
		}

		for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Sizes returns a fresh name to size map. Mutating it does not affect the view.
func (d Dimensions) Sizes() map[string]int {
	m := make(map[string]int, d.Len())
	for k, v := range d.All() {
		m[k] = v
	}

	return m
}
