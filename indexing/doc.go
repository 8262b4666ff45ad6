// Package indexing provides the selection machinery between dataset
// consumers and format engines.
//
// # Two tiers
//
// Consumers select with outer-indexing keys: integers, slices, position
// lists and boolean masks, one selector per axis. Engines only understand
// basic sections: one contiguous strided Range per axis. Adapt bridges the
// two, decomposing any key into a single covering section read plus
// in-memory gathers:
//
//	key:     [Ints(4, 1, 7), Slice(0, 20)]
//	read:    Section{{1, 8, 1}, {0, 20, 1}}   (one engine call)
//	gather:  take(axis 0, [3, 0, 6])
//
// # Blocks
//
// Reads materialize into Blocks: an element type, a shape and a flat
// row-major slice. Blocks are immutable and support further in-memory
// sectioning, so they double as arrays for fully cached data.
//
// # Lazy arrays
//
// Lazy defers reading: integer and slice selections compose arithmetically
// onto a pending selection, and the wrapped array is read once when the
// data is finally needed. Variables hand out Lazy values so metadata-only
// workflows never touch bulk data.
package indexing
