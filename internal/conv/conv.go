// Package conv provides overflow-checked conversions for sizes and shapes
// coming from file metadata, which is never trusted arithmetic input.
package conv

import (
	"fmt"
	"math"
)

// Int64ToInt converts a file-reported length to int safely.
func Int64ToInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("conv: negative length %d", v)
	}

	if v > math.MaxInt {
		return 0, fmt.Errorf("conv: length %d overflows int", v)
	}

	return int(v), nil
}

// IntToInt64 converts an in-memory length to a wire length.
func IntToInt64(v int) (int64, error) {
	if v < 0 {
		return 0, fmt.Errorf("conv: negative length %d", v)
	}

	return int64(v), nil
}

// Product returns the element count of a shape, rejecting negative axes
// and overflow.
func Product(shape []int) (int, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("conv: negative dimension %d in shape %v", s, shape)
		}

		if s != 0 && n > math.MaxInt/s {
			return 0, fmt.Errorf("conv: shape %v overflows element count", shape)
		}

		n *= s
	}

	return n, nil
}
