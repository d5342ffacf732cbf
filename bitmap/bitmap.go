package bitmap

import (
	"errors"
	"fmt"
)

// WordBits is the width of a storage word and of a compressed block.
const WordBits = 64

var (
	// ErrIndexOutOfRange is returned when an index is >= the bitmap capacity.
	ErrIndexOutOfRange = errors.New("bitmap: index out of range")

	// ErrCapacityMismatch is returned when combining bitmaps of different capacity.
	ErrCapacityMismatch = errors.New("bitmap: capacity mismatch")

	// ErrInvariantViolation is returned when raw parts do not describe a
	// consistent bitmap.
	ErrInvariantViolation = errors.New("bitmap: structural invariant violated")
)

// Bitmap is the storage contract shared by all backings.
//
// Get and Set fail with ErrIndexOutOfRange for i >= Capacity(). Set returns
// the value of the bit immediately before the call.
type Bitmap interface {
	Get(i uint64) (bool, error)
	Set(i uint64) (bool, error)
	Capacity() uint64
	CountOnes() uint64
}

// IndexError reports an out-of-range index.
type IndexError struct {
	Index    uint64
	Capacity uint64
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("bitmap: index %d out of range [0, %d)", e.Index, e.Capacity)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// CapacityMismatchError reports two bitmaps built with different capacities.
type CapacityMismatchError struct {
	Left  uint64
	Right uint64
}

func (e *CapacityMismatchError) Error() string {
	return fmt.Sprintf("bitmap: capacity mismatch: %d != %d", e.Left, e.Right)
}

func (e *CapacityMismatchError) Unwrap() error { return ErrCapacityMismatch }

// InvariantError reports raw parts that violate the compressed layout.
type InvariantError struct {
	BlockMapOnes uint64
	StoredBlocks uint64
	Reason       string
}

func (e *InvariantError) Error() string {
	if e.Reason != "" {
		return "bitmap: structural invariant violated: " + e.Reason
	}
	return fmt.Sprintf("bitmap: structural invariant violated: block map has %d ones, store has %d blocks",
		e.BlockMapOnes, e.StoredBlocks)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

func wordIndex(i uint64) uint64 { return i / WordBits }

func bitMask(i uint64) uint64 { return 1 << (i % WordBits) }

// wordsFor returns the number of words needed to hold n bits.
func wordsFor(n uint64) uint64 { return (n + WordBits - 1) / WordBits }

// tailMask returns the mask of valid bits in the last word of an n-bit array.
// A zero-length tail (n is a multiple of 64) yields all ones.
func tailMask(n uint64) uint64 {
	if r := n % WordBits; r != 0 {
		return (uint64(1) << r) - 1
	}
	return ^uint64(0)
}

func outOfRange(i, capacity uint64) error {
	return &IndexError{Index: i, Capacity: capacity}
}
