package bitmap

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// Dense is a plain word-packed bitmap using O(capacity) space.
//
// Get and Set are O(1). A Dense bitmap built WithGrowth grows geometrically
// when Set addresses an index beyond its capacity.
type Dense struct {
	set      *bitset.BitSet
	capacity uint64
	growable bool
}

// DenseOption configures a Dense bitmap.
type DenseOption func(*Dense)

// WithGrowth lets Set extend the capacity instead of failing with
// ErrIndexOutOfRange. The backing array doubles on each growth.
func WithGrowth() DenseOption {
	return func(d *Dense) {
		d.growable = true
	}
}

// NewDense creates an all-zero Dense bitmap holding capacity bits.
func NewDense(capacity uint64, opts ...DenseOption) *Dense {
	d := &Dense{
		set:      bitset.New(uint(capacity)),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DenseFromWords adopts words as the backing array of a capacity-bit bitmap.
//
// words must hold exactly ceil(capacity/64) entries and no bit at or beyond
// capacity may be set. The slice is used in place.
func DenseFromWords(capacity uint64, words []uint64) (*Dense, error) {
	if uint64(len(words)) != wordsFor(capacity) {
		return nil, &InvariantError{Reason: "dense word count does not match capacity"}
	}
	if len(words) > 0 && words[len(words)-1]&^tailMask(capacity) != 0 {
		return nil, &InvariantError{Reason: "dense bits set beyond capacity"}
	}
	return &Dense{
		set:      bitset.FromWithLength(uint(capacity), words),
		capacity: capacity,
	}, nil
}

// Get reports whether bit i is set.
func (d *Dense) Get(i uint64) (bool, error) {
	if i >= d.capacity {
		return false, outOfRange(i, d.capacity)
	}
	return d.set.Test(uint(i)), nil
}

// Set sets bit i and returns its previous value.
func (d *Dense) Set(i uint64) (bool, error) {
	if i >= d.capacity {
		if !d.growable {
			return false, outOfRange(i, d.capacity)
		}
		d.grow(i)
	}
	if d.set.Test(uint(i)) {
		return true, nil
	}
	d.set.Set(uint(i))
	return false, nil
}

// grow extends the capacity to at least i+1 bits, doubling the current size.
func (d *Dense) grow(i uint64) {
	newCap := max(d.capacity*2, i+1)
	next := bitset.New(uint(newCap))
	copy(next.Words(), d.set.Words())
	d.set = next
	d.capacity = newCap
}

// Capacity returns the number of addressable bits.
func (d *Dense) Capacity() uint64 { return d.capacity }

// CountOnes returns the number of set bits.
func (d *Dense) CountOnes() uint64 { return uint64(d.set.Count()) }

// Words returns the backing words, least significant bit first.
// The slice aliases the bitmap and is invalidated by growth.
func (d *Dense) Words() []uint64 { return d.set.Words() }

// Union returns a new bitmap holding the bitwise OR of d and other.
func (d *Dense) Union(other *Dense) (*Dense, error) {
	if d.capacity != other.capacity {
		return nil, &CapacityMismatchError{Left: d.capacity, Right: other.capacity}
	}
	return &Dense{
		set:      d.set.Union(other.set),
		capacity: d.capacity,
		growable: d.growable,
	}, nil
}

// Reset clears every bit, keeping the allocated words.
func (d *Dense) Reset() { d.set.ClearAll() }

// Clone returns an independent copy.
func (d *Dense) Clone() *Dense {
	return &Dense{
		set:      d.set.Clone(),
		capacity: d.capacity,
		growable: d.growable,
	}
}

// ByteSize returns the size of the backing array in bytes.
func (d *Dense) ByteSize() int { return len(d.set.Words()) * 8 }

// populatedBlocks counts non-zero words, the block count after promotion.
func (d *Dense) populatedBlocks() int {
	n := 0
	for _, w := range d.set.Words() {
		if w != 0 {
			n++
		}
	}
	return n
}

// onesIn returns the population count of words.
func onesIn(words []uint64) uint64 {
	var n uint64
	for _, w := range words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}
