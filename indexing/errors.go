package indexing

import "fmt"

// OutOfBoundsError reports an index outside an axis.
type OutOfBoundsError struct {
	Axis  int
	Index int
	Size  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("indexing: index %d out of bounds for axis %d with size %d", e.Index, e.Axis, e.Size)
}

// TooManyIndicesError reports a key longer than the array rank.
type TooManyIndicesError struct {
	Got  int
	Rank int
}

func (e *TooManyIndicesError) Error() string {
	return fmt.Sprintf("indexing: too many indices: got %d selectors for rank %d", e.Got, e.Rank)
}

// MaskLengthError reports a boolean mask whose length differs from the axis size.
type MaskLengthError struct {
	Axis int
	Got  int
	Want int
}

func (e *MaskLengthError) Error() string {
	return fmt.Sprintf("indexing: mask length %d does not match axis %d with size %d", e.Got, e.Axis, e.Want)
}

// StepError reports a slice step below 1.
type StepError struct {
	Step int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("indexing: step must be >= 1, got %d", e.Step)
}

// ShapeError reports a block whose data length does not match its shape.
type ShapeError struct {
	Shape []int
	Len   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("indexing: data length %d does not match shape %v", e.Len, e.Shape)
}
