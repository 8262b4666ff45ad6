package indexing

import (
	"fmt"
	"slices"
)

type normKind uint8

const (
	normRange normKind = iota
	normAt
	normList
)

// normSel is a selector resolved against a concrete axis: negatives and
// End rewritten, bounds checked, masks expanded to position lists.
type normSel struct {
	kind normKind
	r    Range
	at   int
	list []int
}

// normalizeKey resolves a key against a shape. Missing trailing selectors
// select whole axes, nil selectors behave like All.
func normalizeKey(key Key, shape []int) ([]normSel, error) {
	if len(key) > len(shape) {
		return nil, &TooManyIndicesError{Got: len(key), Rank: len(shape)}
	}

	out := make([]normSel, len(shape))
	for d, size := range shape {
		var sel Selector = allSel{}
		if d < len(key) && key[d] != nil {
			sel = key[d]
		}

		ns, err := normalizeSel(sel, d, size)
		if err != nil {
			return nil, err
		}

		out[d] = ns
	}

	return out, nil
}

func normalizeSel(sel Selector, axis, size int) (normSel, error) {
	switch s := sel.(type) {
	case allSel:
		return normSel{kind: normRange, r: Range{Start: 0, Stop: size, Step: 1}}, nil

	case atSel:
		i, err := resolveIndex(s.i, axis, size)
		if err != nil {
			return normSel{}, err
		}

		return normSel{kind: normAt, at: i}, nil

	case sliceSel:
		if s.step < 1 {
			return normSel{}, &StepError{Step: s.step}
		}

		start := clampBound(s.start, size)
		stop := clampBound(s.stop, size)
		if stop < start {
			stop = start
		}

		return normSel{kind: normRange, r: Range{Start: start, Stop: stop, Step: s.step}}, nil

	case intsSel:
		list := make([]int, len(s.ix))
		for i, raw := range s.ix {
			j, err := resolveIndex(raw, axis, size)
			if err != nil {
				return normSel{}, err
			}

			list[i] = j
		}

		return normSel{kind: normList, list: list}, nil

	case maskSel:
		if s.n >= 0 && s.n != size {
			return normSel{}, &MaskLengthError{Axis: axis, Got: s.n, Want: size}
		}

		bits := s.bm.ToArray()
		list := make([]int, len(bits))
		for i, bit := range bits {
			j := int(bit)
			if j >= size {
				return normSel{}, &OutOfBoundsError{Axis: axis, Index: j, Size: size}
			}

			list[i] = j
		}

		return normSel{kind: normList, list: list}, nil

	default:
		return normSel{}, fmt.Errorf("indexing: unknown selector %T", sel)
	}
}

// resolveIndex rewrites a possibly negative position into [0, size).
func resolveIndex(i, axis, size int) (int, error) {
	j := i
	if j < 0 {
		j += size
	}

	if j < 0 || j >= size {
		return 0, &OutOfBoundsError{Axis: axis, Index: i, Size: size}
	}

	return j, nil
}

// clampBound resolves a slice bound: End means the axis end, negatives
// count from the end, and anything outside the axis is clamped.
func clampBound(b, size int) int {
	if b == End {
		return size
	}

	if b < 0 {
		b += size
	}

	if b < 0 {
		return 0
	}

	if b > size {
		return size
	}

	return b
}

type axisTake struct {
	axis int
	ix   []int
}

// Adapt materializes an outer-indexing key through a reader that only
// understands basic sections. The key is decomposed into one covering
// Range per axis, raw is called exactly once, and position lists and
// dropped axes are applied to the result in memory.
//
// A 0-d array accepts only the empty key; raw then receives an empty
// section and must return the 0-d block.
func Adapt(key Key, shape []int, raw func(Section) (*Block, error)) (*Block, error) {
	norm, err := normalizeKey(key, shape)
	if err != nil {
		return nil, err
	}

	sec := make(Section, len(norm))

	var (
		takes []axisTake
		drops []int
	)

	for d, ns := range norm {
		switch ns.kind {
		case normRange:
			sec[d] = ns.r

		case normAt:
			sec[d] = Range{Start: ns.at, Stop: ns.at + 1, Step: 1}
			drops = append(drops, d)

		case normList:
			if len(ns.list) == 0 {
				sec[d] = Range{Start: 0, Stop: 0, Step: 1}
				continue
			}

			lo, hi := ns.list[0], ns.list[0]
			for _, v := range ns.list[1:] {
				lo = min(lo, v)
				hi = max(hi, v)
			}

			sec[d] = Range{Start: lo, Stop: hi + 1, Step: 1}

			rel := make([]int, len(ns.list))
			identity := len(ns.list) == hi-lo+1
			for i, v := range ns.list {
				rel[i] = v - lo
				identity = identity && rel[i] == i
			}

			// A consecutive ascending list is already the covering range.
			if !identity {
				takes = append(takes, axisTake{axis: d, ix: rel})
			}
		}
	}

	blk, err := raw(sec)
	if err != nil {
		return nil, err
	}

	if want := sec.Shape(); !slices.Equal(blk.Shape(), want) {
		return nil, fmt.Errorf("indexing: reader returned shape %v, want %v", blk.Shape(), want)
	}

	for _, tk := range takes {
		blk, err = blk.take(tk.axis, tk.ix)
		if err != nil {
			return nil, err
		}
	}

	for i := len(drops) - 1; i >= 0; i-- {
		blk, err = blk.squeeze(drops[i])
		if err != nil {
			return nil, err
		}
	}

	return blk, nil
}
