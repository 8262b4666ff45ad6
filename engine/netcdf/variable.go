package netcdf

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/hupe1980/gridgo/dtype"
	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/indexing"
	"github.com/hupe1980/gridgo/internal/conv"
	"github.com/hupe1980/gridgo/meta"
)

// variable wraps an api.VarGetter. Element type and shape are resolved
// once at construction; reads go through GetSlice, which slices the
// outermost axis only, with inner axes trimmed in memory.
type variable struct {
	path  string
	name  string
	vg    api.VarGetter
	dims  []string
	dt    dtype.DType
	shape []int
}

var _ engine.Variable = (*variable)(nil)

func newVariable(path, name string, vg api.VarGetter) (*variable, error) {
	dt, ok := dtype.FromGoName(vg.GoType())
	if !ok {
		return nil, fmt.Errorf("netcdf: %s: variable %q: unsupported type %q", path, name, vg.GoType())
	}

	dims := vg.Dimensions()

	shape, err := inferShape(vg, len(dims))
	if err != nil {
		return nil, fmt.Errorf("netcdf: %s: variable %q: %w", path, name, err)
	}

	return &variable{
		path:  path,
		name:  name,
		vg:    vg,
		dims:  dims,
		dt:    dt,
		shape: shape,
	}, nil
}

// inferShape resolves per-axis lengths. The getter reports the outermost
// length directly; inner lengths come from the nesting of a single
// leading row. A variable with an empty outermost axis reports zero for
// the inner axes too, there is no data to measure them from.
func inferShape(vg api.VarGetter, rank int) ([]int, error) {
	if rank == 0 {
		return nil, nil
	}

	shape := make([]int, rank)
	shape[0] = int(vg.Len())

	if rank == 1 || shape[0] == 0 {
		return shape, nil
	}

	sample, err := vg.GetSlice(0, 1)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(sample)
	if v.Kind() != reflect.Slice || v.Len() != 1 {
		return nil, fmt.Errorf("unexpected sample row %T", sample)
	}

	el := v.Index(0)
	for d := 1; d < rank; d++ {
		if el.Kind() != reflect.Slice {
			return nil, fmt.Errorf("%d dimensions but data nests %d deep", rank, d)
		}

		shape[d] = el.Len()
		if el.Len() == 0 {
			break
		}

		el = el.Index(0)
	}

	return shape, nil
}

func (v *variable) Dimensions() []string {
	out := make([]string, len(v.dims))
	copy(out, v.dims)

	return out
}

func (v *variable) Attributes() meta.Attributes {
	return attributes(v.vg.Attributes())
}

func (v *variable) DType() dtype.DType { return v.dt }

func (v *variable) Shape() []int {
	out := make([]int, len(v.shape))
	copy(out, v.shape)

	return out
}

func (v *variable) Scalar() (any, error) {
	if len(v.shape) != 0 {
		return nil, fmt.Errorf("netcdf: %s: variable %q is not scalar", v.path, v.name)
	}

	val, err := v.vg.Values()
	if err != nil {
		return nil, fmt.Errorf("netcdf: %s: variable %q: %w", v.path, v.name, err)
	}

	return val, nil
}

func (v *variable) Section(sec indexing.Section) (*indexing.Block, error) {
	if len(sec) != len(v.shape) {
		return nil, fmt.Errorf("netcdf: %s: variable %q: section rank %d, want %d",
			v.path, v.name, len(sec), len(v.shape))
	}

	if len(v.shape) == 0 {
		val, err := v.Scalar()
		if err != nil {
			return nil, err
		}

		return indexing.NewScalar(val)
	}

	outer := sec[0]
	if outer.Step < 1 {
		return nil, &indexing.StepError{Step: outer.Step}
	}

	if outer.Start < 0 || outer.Start > outer.Stop || outer.Stop > v.shape[0] {
		return nil, &indexing.OutOfBoundsError{Axis: 0, Index: outer.Start, Size: v.shape[0]}
	}

	raw, err := v.vg.GetSlice(int64(outer.Start), int64(outer.Stop))
	if err != nil {
		return nil, fmt.Errorf("netcdf: %s: variable %q: read [%d:%d]: %w",
			v.path, v.name, outer.Start, outer.Stop, err)
	}

	rawShape := make([]int, len(v.shape))
	rawShape[0] = outer.Stop - outer.Start
	copy(rawShape[1:], v.shape[1:])

	blk, err := flatten(raw, v.dt, rawShape)
	if err != nil {
		return nil, fmt.Errorf("netcdf: %s: variable %q: %w", v.path, v.name, err)
	}

	trim := make(indexing.Section, len(sec))
	trim[0] = indexing.Range{Start: 0, Stop: rawShape[0], Step: outer.Step}
	copy(trim[1:], sec[1:])

	if !needsTrim(trim, rawShape) {
		return blk, nil
	}

	return blk.Section(trim)
}

// needsTrim reports whether the raw read already equals the requested
// section, saving a copy for plain contiguous reads.
func needsTrim(trim indexing.Section, shape []int) bool {
	for d, r := range trim {
		if r.Step != 1 || r.Start != 0 || r.Stop != shape[d] {
			return true
		}
	}

	return false
}

// flatten copies a nested row-major slice into a flat block of the given
// shape, validating nesting depth and row lengths along the way.
func flatten(raw any, dt dtype.DType, shape []int) (*indexing.Block, error) {
	total, err := conv.Product(shape)
	if err != nil {
		return nil, err
	}

	flat, err := dt.MakeSlice(total)
	if err != nil {
		return nil, err
	}

	dst := reflect.ValueOf(flat)
	pos := 0

	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if v.Kind() != reflect.Slice {
			return fmt.Errorf("data nests %d deep, want %d", depth, len(shape))
		}

		if v.Len() != shape[depth] {
			return fmt.Errorf("ragged data: axis %d row has %d elements, want %d", depth, v.Len(), shape[depth])
		}

		if depth == len(shape)-1 {
			if v.Type().Elem() != dst.Type().Elem() {
				return fmt.Errorf("row type %s does not match %s", v.Type(), dst.Type())
			}

			reflect.Copy(dst.Slice(pos, pos+v.Len()), v)
			pos += v.Len()

			return nil
		}

		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(reflect.ValueOf(raw), 0); err != nil {
		return nil, err
	}

	return indexing.NewBlock(dt, shape, flat)
}
