package indexing

// Range selects every Step-th element of one axis in [Start, Stop).
// A normalized Range satisfies 0 <= Start <= Stop <= size and Step >= 1.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// Len returns the number of selected elements.
func (r Range) Len() int {
	if r.Stop <= r.Start {
		return 0
	}

	step := r.Step
	if step < 1 {
		step = 1
	}

	return (r.Stop - r.Start + step - 1) / step
}

// indices expands the range into explicit axis positions.
func (r Range) indices() []int {
	out := make([]int, 0, r.Len())
	for i := r.Start; i < r.Stop; i += max(r.Step, 1) {
		out = append(out, i)
	}

	return out
}

// Section is a basic selection: one Range per axis. It is the only
// selection shape engines have to understand, and the target the
// outer-indexing adapter decomposes every key into.
type Section []Range

// Shape returns the per-axis lengths of the selection.
func (s Section) Shape() []int {
	shape := make([]int, len(s))
	for i, r := range s {
		shape[i] = r.Len()
	}

	return shape
}

// Size returns the total number of selected elements.
func (s Section) Size() int {
	n := 1
	for _, r := range s {
		n *= r.Len()
	}

	return n
}

// Full returns the section covering an entire array of the given shape.
func Full(shape []int) Section {
	sec := make(Section, len(shape))
	for i, n := range shape {
		sec[i] = Range{Start: 0, Stop: n, Step: 1}
	}

	return sec
}
