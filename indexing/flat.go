package indexing

import (
	"fmt"

	"github.com/hupe1980/gridgo/dtype"
)

// gather copies src positions into a fresh slice, preserving order.
func gather[T any](src []T, ix []int) []T {
	out := make([]T, len(ix))
	for i, j := range ix {
		out[i] = src[j]
	}

	return out
}

// flatGather dispatches gather over the canonical flat slice types.
func flatGather(data any, ix []int) (any, error) {
	switch src := data.(type) {
	case []int8:
		return gather(src, ix), nil
	case []int16:
		return gather(src, ix), nil
	case []int32:
		return gather(src, ix), nil
	case []int64:
		return gather(src, ix), nil
	case []uint8:
		return gather(src, ix), nil
	case []uint16:
		return gather(src, ix), nil
	case []uint32:
		return gather(src, ix), nil
	case []uint64:
		return gather(src, ix), nil
	case []float32:
		return gather(src, ix), nil
	case []float64:
		return gather(src, ix), nil
	case []string:
		return gather(src, ix), nil
	case []bool:
		return gather(src, ix), nil
	default:
		return nil, fmt.Errorf("indexing: unsupported flat data %T", data)
	}
}

// flatLen returns the length of a canonical flat slice.
func flatLen(data any) (int, error) {
	switch src := data.(type) {
	case []int8:
		return len(src), nil
	case []int16:
		return len(src), nil
	case []int32:
		return len(src), nil
	case []int64:
		return len(src), nil
	case []uint8:
		return len(src), nil
	case []uint16:
		return len(src), nil
	case []uint32:
		return len(src), nil
	case []uint64:
		return len(src), nil
	case []float32:
		return len(src), nil
	case []float64:
		return len(src), nil
	case []string:
		return len(src), nil
	case []bool:
		return len(src), nil
	default:
		return 0, fmt.Errorf("indexing: unsupported flat data %T", data)
	}
}

// flatElem returns the element at flat position i.
func flatElem(data any, i int) (any, error) {
	switch src := data.(type) {
	case []int8:
		return src[i], nil
	case []int16:
		return src[i], nil
	case []int32:
		return src[i], nil
	case []int64:
		return src[i], nil
	case []uint8:
		return src[i], nil
	case []uint16:
		return src[i], nil
	case []uint32:
		return src[i], nil
	case []uint64:
		return src[i], nil
	case []float32:
		return src[i], nil
	case []float64:
		return src[i], nil
	case []string:
		return src[i], nil
	case []bool:
		return src[i], nil
	default:
		return nil, fmt.Errorf("indexing: unsupported flat data %T", data)
	}
}

// toFloat64 converts each numeric element to float64.
func toFloat64(data any) ([]float64, error) {
	switch src := data.(type) {
	case []float64:
		out := make([]float64, len(src))
		copy(out, src)
		return out, nil
	case []float32:
		return convertFloat64(src), nil
	case []int8:
		return convertFloat64(src), nil
	case []int16:
		return convertFloat64(src), nil
	case []int32:
		return convertFloat64(src), nil
	case []int64:
		return convertFloat64(src), nil
	case []uint8:
		return convertFloat64(src), nil
	case []uint16:
		return convertFloat64(src), nil
	case []uint32:
		return convertFloat64(src), nil
	case []uint64:
		return convertFloat64(src), nil
	default:
		return nil, fmt.Errorf("indexing: cannot convert %s data to float64", dtype.Of(data))
	}
}

type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func convertFloat64[T numeric](src []T) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}

	return out
}

// isCanonicalFlat reports whether data is one of the supported flat slice types.
func isCanonicalFlat(data any) bool {
	_, err := flatLen(data)
	return err == nil
}
