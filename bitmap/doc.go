// Package bitmap provides the bit storage engines behind sparsebloom filters.
//
// # Backings
//
// Three interchangeable backings implement the Bitmap contract:
//
//   - Dense: a word-packed array sized to capacity. O(1) Get/Set with no
//     allocation policy per bit. Use it for bulk loading.
//   - Compressed: a two-level sparse bitmap. A block map records which 64-bit
//     blocks have ever been written and a compacted block store holds only
//     those blocks. Memory grows with the number of populated blocks, not
//     with capacity.
//   - Roaring: an adapter over roaring64 for callers that already keep
//     Roaring bitmaps.
//
// # Compressed layout
//
// A sparsely populated bitmap such as
//
//	┌───┬───┬───┬───┬───┬───┬───┬───┬───┬───┬───┬───┐
//	│ 0 │ 0 │ 0 │ 0 │ 1 │ 0 │ 0 │ 1 │ 0 │ 0 │ 0 │ 0 │
//	└───┴───┴───┴───┴───┴───┴───┴───┴───┴───┴───┴───┘
//
// is held as a block map plus only the blocks that contain set bits:
//
//	              ┌───┬───┬───┐
//	   Block map: │ 0 │ 1 │ 0 │
//	              └───┴─┬─┴───┘
//	                    └──────┐
//	 ┌ ─ ┬ ─ ┬ ─ ┬ ─ ┐ ┌───┬───▼───┬───┐ ┌ ─ ┬ ─ ┬ ─ ┬ ─ ┐
//	   0   0   0   0   │ 1 │ 0 │ 0 │ 1 │   0   0   0   0
//	 └ ─ ┴ ─ ┴ ─ ┴ ─ ┘ └───┴───┴───┴───┘ └ ─ ┴ ─ ┴ ─ ┴ ─ ┘
//
// The position of block j in the store is the number of set block-map bits
// before j (its rank). Two invariants always hold:
//
//   - the store length equals the population count of the block map
//   - store entry p belongs to the block of the p-th set block-map bit
//
// A Get on an unpopulated block is a single bit test that never touches the
// store. A Set on a new block inserts one word at its rank; that shift is
// paid once per distinct block over the bitmap's lifetime.
//
// # Bulk loading
//
// Inserting many bits directly into a Compressed bitmap pays a shift per new
// block. For bulk loads fill a Dense bitmap and call Promote.
//
// # Thread Safety
//
// No backing synchronizes internally. Any number of readers may run
// concurrently when no writer is active; a writer requires exclusive access.
package bitmap
