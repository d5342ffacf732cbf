package bitmap

// Promote converts a populated Dense bitmap into an equivalent Compressed
// bitmap.
//
// Dense words are scanned in ascending order; zero words are elided and every
// non-zero word becomes one block. The result has the dense bitmap's current
// capacity and shares no memory with it. d is not modified.
func Promote(d *Dense) *Compressed {
	c := NewCompressed(d.capacity)
	words := d.Words()
	if n := c.NumBlocks(); uint64(len(words)) > n {
		words = words[:n]
	}

	c.blocks = make([]uint64, 0, d.populatedBlocks())
	for bi, word := range words {
		if word == 0 {
			continue
		}
		c.blocks = append(c.blocks, word)
		c.blockMap[wordIndex(uint64(bi))] |= bitMask(uint64(bi))
	}
	c.rebuildRanks()
	return c
}
