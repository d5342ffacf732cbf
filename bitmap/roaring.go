package bitmap

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Roaring adapts a roaring64 bitmap to the Bitmap contract with a fixed
// capacity.
type Roaring struct {
	rb       *roaring64.Bitmap
	capacity uint64
}

// NewRoaring creates an empty Roaring-backed bitmap holding capacity bits.
func NewRoaring(capacity uint64) *Roaring {
	return &Roaring{
		rb:       roaring64.New(),
		capacity: capacity,
	}
}

// WrapRoaring adopts rb. Every value in rb must be below capacity.
func WrapRoaring(rb *roaring64.Bitmap, capacity uint64) (*Roaring, error) {
	if !rb.IsEmpty() && rb.Maximum() >= capacity {
		return nil, outOfRange(rb.Maximum(), capacity)
	}
	return &Roaring{rb: rb, capacity: capacity}, nil
}

// Get reports whether bit i is set.
func (r *Roaring) Get(i uint64) (bool, error) {
	if i >= r.capacity {
		return false, outOfRange(i, r.capacity)
	}
	return r.rb.Contains(i), nil
}

// Set sets bit i and returns its previous value.
func (r *Roaring) Set(i uint64) (bool, error) {
	if i >= r.capacity {
		return false, outOfRange(i, r.capacity)
	}
	return !r.rb.CheckedAdd(i), nil
}

// Capacity returns the number of addressable bits.
func (r *Roaring) Capacity() uint64 { return r.capacity }

// CountOnes returns the number of set bits.
func (r *Roaring) CountOnes() uint64 { return r.rb.GetCardinality() }

// Unwrap returns the underlying roaring64 bitmap.
func (r *Roaring) Unwrap() *roaring64.Bitmap { return r.rb }

// ToCompressed copies the set bits into a Compressed bitmap. Memory is
// proportional to the block map and the occupied blocks, never to capacity.
func (r *Roaring) ToCompressed() *Compressed {
	c := NewCompressed(r.capacity)
	if n := r.rb.GetCardinality(); n > 0 {
		c.blocks = make([]uint64, 0, min(n, wordsFor(r.capacity)))
	}

	// Values arrive ascending, so each new block is appended at the store tail.
	last := uint64(math.MaxUint64)
	it := r.rb.Iterator()
	for it.HasNext() {
		v := it.Next()
		bi := wordIndex(v)
		if bi != last {
			c.blockMap[wordIndex(bi)] |= bitMask(bi)
			c.blocks = append(c.blocks, 0)
			last = bi
		}
		c.blocks[len(c.blocks)-1] |= bitMask(v)
	}
	c.rebuildRanks()
	return c
}
