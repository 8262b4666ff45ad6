package indexing

import (
	"fmt"
	"reflect"

	"github.com/hupe1980/gridgo/dtype"
)

// Block is a materialized n-dimensional array: an element type, a shape
// and a flat row-major slice. Blocks are immutable once built; every
// operation returns a new Block, sharing the flat data where it can.
//
// A 0-d Block has an empty shape and exactly one element.
type Block struct {
	dt    dtype.DType
	shape []int
	data  any
}

// NewBlock builds a block over a flat row-major slice. The slice type must
// match dt ([]float64 for Float64 and so on; []int and []uint are not
// accepted) and its length must equal the product of shape.
func NewBlock(dt dtype.DType, shape []int, data any) (*Block, error) {
	if !isCanonicalFlat(data) {
		return nil, fmt.Errorf("indexing: data must be a flat typed slice, got %T", data)
	}

	if got := dtype.Of(data); got != dt {
		return nil, fmt.Errorf("indexing: data type %s does not match %s", got, dt)
	}

	n, err := flatLen(data)
	if err != nil {
		return nil, err
	}

	want := 1
	for _, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("indexing: negative dimension in shape %v", shape)
		}

		want *= s
	}

	if n != want {
		return nil, &ShapeError{Shape: append([]int(nil), shape...), Len: n}
	}

	return &Block{dt: dt, shape: append([]int(nil), shape...), data: data}, nil
}

// NewScalar builds a 0-d block holding a single value.
func NewScalar(v any) (*Block, error) {
	dt := dtype.Of(v)
	if dt == dtype.Invalid {
		return nil, fmt.Errorf("indexing: unsupported scalar %T", v)
	}

	flat, err := dt.MakeSlice(1)
	if err != nil {
		return nil, err
	}

	fv := reflect.ValueOf(flat).Index(0)
	fv.Set(reflect.ValueOf(v).Convert(fv.Type()))

	return &Block{dt: dt, shape: nil, data: flat}, nil
}

// DType returns the element type.
func (b *Block) DType() dtype.DType { return b.dt }

// Shape returns a copy of the per-axis lengths. A 0-d block returns an
// empty shape.
func (b *Block) Shape() []int { return append([]int(nil), b.shape...) }

// Rank returns the number of axes.
func (b *Block) Rank() int { return len(b.shape) }

// Len returns the total number of elements.
func (b *Block) Len() int {
	n := 1
	for _, s := range b.shape {
		n *= s
	}

	return n
}

// IsScalar reports whether the block is 0-d.
func (b *Block) IsScalar() bool { return len(b.shape) == 0 }

// Values returns the flat row-major slice. Callers must not mutate it.
func (b *Block) Values() any { return b.data }

// Scalar returns the single element of a 0-d block.
func (b *Block) Scalar() (any, error) {
	if !b.IsScalar() {
		return nil, fmt.Errorf("indexing: block of shape %v is not a scalar", b.shape)
	}

	return flatElem(b.data, 0)
}

// At returns the element at the given coordinates, one per axis.
func (b *Block) At(ix ...int) (any, error) {
	if len(ix) != len(b.shape) {
		return nil, fmt.Errorf("indexing: got %d coordinates for rank %d", len(ix), len(b.shape))
	}

	off := 0
	for d, i := range ix {
		if i < 0 || i >= b.shape[d] {
			return nil, &OutOfBoundsError{Axis: d, Index: i, Size: b.shape[d]}
		}

		off = off*b.shape[d] + i
	}

	return flatElem(b.data, off)
}

// Float64s returns the elements converted to float64 in row-major order.
// Non-numeric blocks return an error.
func (b *Block) Float64s() ([]float64, error) {
	return toFloat64(b.data)
}

// Section returns the sub-block selected by one normalized Range per axis.
func (b *Block) Section(sec Section) (*Block, error) {
	if len(sec) != len(b.shape) {
		return nil, fmt.Errorf("indexing: section rank %d does not match block rank %d", len(sec), len(b.shape))
	}

	perAxis := make([][]int, len(sec))
	for d, r := range sec {
		if r.Step < 1 {
			return nil, &StepError{Step: r.Step}
		}

		if r.Start < 0 || r.Stop > b.shape[d] || r.Start > r.Stop {
			return nil, &OutOfBoundsError{Axis: d, Index: r.Start, Size: b.shape[d]}
		}

		perAxis[d] = r.indices()
	}

	return b.gatherAxes(perAxis)
}

// Index materializes an outer-indexing key against the block, making
// *Block an Array.
func (b *Block) Index(key Key) (*Block, error) {
	return Adapt(key, b.shape, b.Section)
}

// take replaces one axis by an explicit position list.
func (b *Block) take(axis int, ix []int) (*Block, error) {
	perAxis := make([][]int, len(b.shape))
	for d, n := range b.shape {
		if d == axis {
			perAxis[d] = ix
			continue
		}

		perAxis[d] = ascending(n)
	}

	return b.gatherAxes(perAxis)
}

// squeeze drops a length-1 axis without copying data.
func (b *Block) squeeze(axis int) (*Block, error) {
	if axis < 0 || axis >= len(b.shape) || b.shape[axis] != 1 {
		return nil, fmt.Errorf("indexing: cannot squeeze axis %d of shape %v", axis, b.shape)
	}

	shape := make([]int, 0, len(b.shape)-1)
	shape = append(shape, b.shape[:axis]...)
	shape = append(shape, b.shape[axis+1:]...)

	return &Block{dt: b.dt, shape: shape, data: b.data}, nil
}

// gatherAxes builds the block selecting perAxis[d] positions along each
// axis d, walking the output in row-major order.
func (b *Block) gatherAxes(perAxis [][]int) (*Block, error) {
	shape := make([]int, len(perAxis))
	size := 1
	for d, ix := range perAxis {
		for _, i := range ix {
			if i < 0 || i >= b.shape[d] {
				return nil, &OutOfBoundsError{Axis: d, Index: i, Size: b.shape[d]}
			}
		}

		shape[d] = len(ix)
		size *= len(ix)
	}

	strides := rowMajorStrides(b.shape)

	flat := make([]int, 0, size)
	if size > 0 {
		coord := make([]int, len(perAxis))
		for {
			off := 0
			for d := range perAxis {
				off += perAxis[d][coord[d]] * strides[d]
			}

			flat = append(flat, off)

			d := len(coord) - 1
			for ; d >= 0; d-- {
				coord[d]++
				if coord[d] < len(perAxis[d]) {
					break
				}

				coord[d] = 0
			}

			if d < 0 {
				break
			}
		}
	}

	data, err := flatGather(b.data, flat)
	if err != nil {
		return nil, err
	}

	return &Block{dt: b.dt, shape: shape, data: data}, nil
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}

	return strides
}

func ascending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}
