package indexing

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// End marks "the end of the axis" in Slice stops, whatever the axis size.
const End = math.MaxInt

// Selector picks elements along one axis of a key. Selectors are built
// with All, At, Slice, SliceStep, Ints, Masks and Mask; the set is closed.
type Selector interface {
	isSelector()
}

// Key addresses an n-dimensional array, one selector per axis. A key
// shorter than the rank selects whole trailing axes. The empty key
// addresses every element, and is the only valid key for a 0-d array.
type Key []Selector

type allSel struct{}

type atSel struct {
	i int
}

type sliceSel struct {
	start, stop, step int
}

type intsSel struct {
	ix []int
}

type maskSel struct {
	bm *roaring.Bitmap
	// n is the declared mask length, or -1 when built from a bare bitmap.
	n int
}

func (allSel) isSelector()   {}
func (atSel) isSelector()    {}
func (sliceSel) isSelector() {}
func (intsSel) isSelector()  {}
func (maskSel) isSelector()  {}

// All selects the whole axis.
func All() Selector { return allSel{} }

// At selects a single position and drops the axis from the result.
// Negative positions count from the end of the axis.
func At(i int) Selector { return atSel{i: i} }

// Slice selects [start, stop) with step 1. Negative bounds count from the
// end of the axis; stop may be End.
func Slice(start, stop int) Selector {
	return sliceSel{start: start, stop: stop, step: 1}
}

// SliceStep selects every step-th element of [start, stop). The step must
// be at least 1.
func SliceStep(start, stop, step int) Selector {
	return sliceSel{start: start, stop: stop, step: step}
}

// Ints selects the given positions along the axis, in the given order.
// Positions may repeat, and negative positions count from the end.
func Ints(ix ...int) Selector {
	cp := make([]int, len(ix))
	copy(cp, ix)

	return intsSel{ix: cp}
}

// Masks selects the positions where bools is true. The mask length must
// equal the axis size.
func Masks(bools []bool) Selector {
	bm := roaring.New()
	for i, b := range bools {
		if b {
			bm.Add(uint32(i))
		}
	}

	return maskSel{bm: bm, n: len(bools)}
}

// Mask selects the positions in the bitmap. Every set bit must lie inside
// the axis. The bitmap is cloned, later mutation does not affect the key.
func Mask(bm *roaring.Bitmap) Selector {
	if bm == nil {
		bm = roaring.New()
	}

	return maskSel{bm: bm.Clone(), n: -1}
}
