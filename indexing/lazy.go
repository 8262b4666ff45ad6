package indexing

import "github.com/hupe1980/gridgo/dtype"

// Array is an indexable n-dimensional array. Shape and DType must be
// answerable without reading data; Index materializes a selection.
type Array interface {
	Shape() []int
	DType() dtype.DType
	Index(key Key) (*Block, error)
}

// pendingAxis is one source axis of a Lazy: either a kept axis with its
// accumulated range, or an axis dropped by an integer selection.
type pendingAxis struct {
	r       Range
	at      int
	dropped bool
}

// Lazy wraps an Array and accumulates basic selections without reading
// data. Integer and slice selections compose arithmetically; position
// lists and masks force materialization. The wrapped array is read at
// most once per Index or Load call.
type Lazy struct {
	arr  Array
	axes []pendingAxis
}

// NewLazy wraps an array with an empty pending selection.
func NewLazy(arr Array) *Lazy {
	shape := arr.Shape()

	axes := make([]pendingAxis, len(shape))
	for d, n := range shape {
		axes[d] = pendingAxis{r: Range{Start: 0, Stop: n, Step: 1}}
	}

	return &Lazy{arr: arr, axes: axes}
}

// DType returns the element type without touching storage.
func (l *Lazy) DType() dtype.DType { return l.arr.DType() }

// Shape returns the selected shape without touching storage.
func (l *Lazy) Shape() []int {
	shape := make([]int, 0, len(l.axes))
	for _, ax := range l.axes {
		if !ax.dropped {
			shape = append(shape, ax.r.Len())
		}
	}

	return shape
}

// Rank returns the number of remaining axes.
func (l *Lazy) Rank() int { return len(l.Shape()) }

// Select composes a key onto the pending selection. Integer and slice
// selectors stay lazy; a key containing position lists or masks
// materializes the selection first and wraps the result.
func (l *Lazy) Select(key Key) (*Lazy, error) {
	norm, err := normalizeKey(key, l.Shape())
	if err != nil {
		return nil, err
	}

	for _, ns := range norm {
		if ns.kind == normList {
			blk, err := l.Index(key)
			if err != nil {
				return nil, err
			}

			return NewLazy(blk), nil
		}
	}

	axes := append([]pendingAxis(nil), l.axes...)

	cur := 0
	for d := range axes {
		if axes[d].dropped {
			continue
		}

		ns := norm[cur]
		cur++

		outer := axes[d].r
		switch ns.kind {
		case normRange:
			axes[d].r = composeRange(outer, ns.r)
		case normAt:
			axes[d] = pendingAxis{at: outer.Start + ns.at*outer.Step, dropped: true}
		}
	}

	return &Lazy{arr: l.arr, axes: axes}, nil
}

// Index materializes a key applied on top of the pending selection with a
// single read of the wrapped array.
func (l *Lazy) Index(key Key) (*Block, error) {
	norm, err := normalizeKey(key, l.Shape())
	if err != nil {
		return nil, err
	}

	full := make(Key, len(l.axes))

	cur := 0
	for d, ax := range l.axes {
		if ax.dropped {
			full[d] = At(ax.at)
			continue
		}

		ns := norm[cur]
		cur++

		outer := ax.r
		switch ns.kind {
		case normRange:
			r := composeRange(outer, ns.r)
			full[d] = SliceStep(r.Start, r.Stop, r.Step)
		case normAt:
			full[d] = At(outer.Start + ns.at*outer.Step)
		case normList:
			mapped := make([]int, len(ns.list))
			for i, j := range ns.list {
				mapped[i] = outer.Start + j*outer.Step
			}

			full[d] = Ints(mapped...)
		}
	}

	return l.arr.Index(full)
}

// Load materializes the pending selection.
func (l *Lazy) Load() (*Block, error) {
	return l.Index(nil)
}

// composeRange applies inner, expressed in outer's coordinates, on top of
// outer, returning the result in source coordinates.
func composeRange(outer, inner Range) Range {
	start := outer.Start + inner.Start*outer.Step
	step := outer.Step * inner.Step

	n := inner.Len()
	if n == 0 {
		return Range{Start: start, Stop: start, Step: step}
	}

	return Range{Start: start, Stop: start + (n-1)*step + 1, Step: step}
}
