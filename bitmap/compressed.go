package bitmap

import (
	"math/bits"
	"slices"
)

// Compressed is a sparse two-level bitmap with a low memory footprint.
//
// Storage for a 64-bit block is allocated on the first Set inside it and is
// never released by Set. Capacity is fixed at construction.
type Compressed struct {
	capacity uint64

	// blockMap bit j is set iff block j is allocated. LSB first.
	blockMap []uint64

	// ranks[w] is the number of set bits in blockMap[:w]. Derived, never
	// persisted.
	ranks []uint64

	// blocks holds the allocated blocks in ascending block order.
	blocks []uint64
}

// NewCompressed creates an empty Compressed bitmap holding capacity bits.
// Only the block map is allocated.
func NewCompressed(capacity uint64) *Compressed {
	mapWords := wordsFor(wordsFor(capacity))
	return &Compressed{
		capacity: capacity,
		blockMap: make([]uint64, mapWords),
		ranks:    make([]uint64, mapWords),
	}
}

// CompressedFromParts adopts a block map and block store produced by an
// encoder. Both slices are used in place.
//
// The parts are rejected with ErrInvariantViolation when the block map has
// the wrong length, marks blocks beyond capacity, or its population count
// differs from the number of stored blocks.
func CompressedFromParts(capacity uint64, blockMap, blocks []uint64) (*Compressed, error) {
	numBlocks := wordsFor(capacity)
	if uint64(len(blockMap)) != wordsFor(numBlocks) {
		return nil, &InvariantError{Reason: "block map length does not match capacity"}
	}
	if len(blockMap) > 0 && blockMap[len(blockMap)-1]&^tailMask(numBlocks) != 0 {
		return nil, &InvariantError{Reason: "block map marks blocks beyond capacity"}
	}
	if ones := onesIn(blockMap); ones != uint64(len(blocks)) {
		return nil, &InvariantError{BlockMapOnes: ones, StoredBlocks: uint64(len(blocks))}
	}
	if len(blocks) > 0 && lastBlock(blockMap) == numBlocks-1 && blocks[len(blocks)-1]&^tailMask(capacity) != 0 {
		return nil, &InvariantError{Reason: "store holds bits beyond capacity"}
	}

	c := &Compressed{
		capacity: capacity,
		blockMap: blockMap,
		ranks:    make([]uint64, len(blockMap)),
		blocks:   blocks,
	}
	c.rebuildRanks()
	return c, nil
}

// lastBlock returns the highest allocated block index, or ^0 when empty.
func lastBlock(blockMap []uint64) uint64 {
	for w := len(blockMap) - 1; w >= 0; w-- {
		if blockMap[w] != 0 {
			return uint64(w)*WordBits + uint64(63-bits.LeadingZeros64(blockMap[w]))
		}
	}
	return ^uint64(0)
}

func (c *Compressed) rebuildRanks() {
	var n uint64
	for w, word := range c.blockMap {
		c.ranks[w] = n
		n += uint64(bits.OnesCount64(word))
	}
}

// rank returns the store position of block bi: the number of allocated
// blocks before it.
func (c *Compressed) rank(bi uint64) int {
	w := wordIndex(bi)
	return int(c.ranks[w] + uint64(bits.OnesCount64(c.blockMap[w]&(bitMask(bi)-1))))
}

// Get reports whether bit i is set.
//
// An unallocated block answers false from a single block-map test.
func (c *Compressed) Get(i uint64) (bool, error) {
	if i >= c.capacity {
		return false, outOfRange(i, c.capacity)
	}
	bi := wordIndex(i)
	if c.blockMap[wordIndex(bi)]&bitMask(bi) == 0 {
		return false, nil
	}
	return c.blocks[c.rank(bi)]&bitMask(i) != 0, nil
}

// Set sets bit i and returns its previous value.
//
// The first Set inside a block inserts a new word into the store at the
// block's rank, shifting later blocks up by one slot.
func (c *Compressed) Set(i uint64) (bool, error) {
	if i >= c.capacity {
		return false, outOfRange(i, c.capacity)
	}
	bi := wordIndex(i)
	w := wordIndex(bi)
	mask := bitMask(i)
	r := c.rank(bi)

	if c.blockMap[w]&bitMask(bi) != 0 {
		prev := c.blocks[r]&mask != 0
		c.blocks[r] |= mask
		return prev, nil
	}

	c.blocks = slices.Insert(c.blocks, r, mask)
	c.blockMap[w] |= bitMask(bi)
	for j := w + 1; j < uint64(len(c.ranks)); j++ {
		c.ranks[j]++
	}
	return false, nil
}

// Capacity returns the number of addressable bits.
func (c *Compressed) Capacity() uint64 { return c.capacity }

// CountOnes returns the number of set bits. O(allocated blocks).
func (c *Compressed) CountOnes() uint64 { return onesIn(c.blocks) }

// BlockCount returns the number of allocated blocks.
func (c *Compressed) BlockCount() int { return len(c.blocks) }

// NumBlocks returns the number of addressable blocks, ceil(capacity/64).
func (c *Compressed) NumBlocks() uint64 { return wordsFor(c.capacity) }

// BlockMap returns the block map words. The slice aliases the bitmap.
func (c *Compressed) BlockMap() []uint64 { return c.blockMap }

// Blocks returns the allocated block words in ascending block order.
// The slice aliases the bitmap and is invalidated by the next allocation.
func (c *Compressed) Blocks() []uint64 { return c.blocks }

// ForEachBlock calls fn for every allocated block in ascending order until fn
// returns false.
func (c *Compressed) ForEachBlock(fn func(block uint64, word uint64) bool) {
	p := 0
	for w, mask := range c.blockMap {
		for mask != 0 {
			bi := uint64(w)*WordBits + uint64(bits.TrailingZeros64(mask))
			if !fn(bi, c.blocks[p]) {
				return
			}
			p++
			mask &= mask - 1
		}
	}
}

// Union returns a new bitmap holding the bitwise OR of c and other.
//
// Blocks are merged in a single pass over both block maps; neither input is
// decompressed.
func (c *Compressed) Union(other *Compressed) (*Compressed, error) {
	if c.capacity != other.capacity {
		return nil, &CapacityMismatchError{Left: c.capacity, Right: other.capacity}
	}

	out := &Compressed{
		capacity: c.capacity,
		blockMap: make([]uint64, len(c.blockMap)),
		ranks:    make([]uint64, len(c.blockMap)),
	}
	var blocks []uint64
	l, r := 0, 0
	for w := range c.blockMap {
		left, right := c.blockMap[w], other.blockMap[w]
		merged := left | right
		out.blockMap[w] = merged
		for merged != 0 {
			bit := uint64(1) << bits.TrailingZeros64(merged)
			var word uint64
			if left&bit != 0 {
				word |= c.blocks[l]
				l++
			}
			if right&bit != 0 {
				word |= other.blocks[r]
				r++
			}
			blocks = append(blocks, word)
			merged &^= bit
		}
	}
	out.blocks = blocks
	out.rebuildRanks()
	return out, nil
}

// Reset clears the bitmap, keeping the allocated memory for reuse.
func (c *Compressed) Reset() {
	clear(c.blockMap)
	clear(c.ranks)
	c.blocks = c.blocks[:0]
}

// ShrinkToFit releases spare store capacity. Useful once a populated bitmap
// becomes read-only.
func (c *Compressed) ShrinkToFit() {
	if cap(c.blocks) == len(c.blocks) {
		return
	}
	blocks := make([]uint64, len(c.blocks))
	copy(blocks, c.blocks)
	c.blocks = blocks
}

// ByteSize returns the resident size in bytes of the block map, rank
// directory and store (by capacity).
func (c *Compressed) ByteSize() int {
	return (cap(c.blockMap) + cap(c.ranks) + cap(c.blocks)) * 8
}

// Clone returns an independent copy.
func (c *Compressed) Clone() *Compressed {
	return &Compressed{
		capacity: c.capacity,
		blockMap: slices.Clone(c.blockMap),
		ranks:    slices.Clone(c.ranks),
		blocks:   slices.Clone(c.blocks),
	}
}

// ToDense expands c into an equivalent Dense bitmap.
func (c *Compressed) ToDense() *Dense {
	d := NewDense(c.capacity)
	words := d.Words()
	c.ForEachBlock(func(block, word uint64) bool {
		words[block] = word
		return true
	})
	return d
}
