// Package sparsebloom provides a bloom filter backed by a space-efficient
// two-level sparse bitmap.
//
// A filter answers "possibly present" or "definitely absent". Items that were
// inserted are always reported present; absent items are reported present
// with a probability that grows with the fill ratio.
//
// # Quick Start
//
//	f, _ := sparsebloom.NewWithEstimates(1_000_000, 0.01)
//	_ = f.InsertString("alice")
//	ok, _ := f.ContainsString("alice") // true
//
// # Backings
//
// The default backing is bitmap.Compressed, which allocates a 64-bit block only
// when a bit inside it is first set. Long-lived filters that are mostly empty
// stay small in memory and on disk. Bulk loads are faster on a dense backing:
//
//	d, _ := sparsebloom.NewDense(m, k)
//	for _, item := range items {
//	    _ = d.Insert(item)
//	}
//	f := sparsebloom.Promote(d)
//
// Any type implementing bitmap.Bitmap can be supplied with NewWithBitmap.
//
// # Probe Scheme (V1)
//
// For every item the hasher yields two 64-bit halves (h1, h2). A zero h2 is
// replaced by 1. The k probed bit indices are
//
//	probe_i = (h1 + i·h2) mod m,  i = 0..k-1
//
// evaluated in 128-bit arithmetic so the sum never wraps. The scheme and the
// hasher together decide which bits a persisted filter expects; changing
// either makes stored filters report false negatives.
//
// # Hashers
//
// NewRandomHasher (the default) keys murmur3 with a random seed chosen once at
// construction. NewMurmur3Hasher and NewXXHasher take a fixed seed. Seeded
// hashers are persisted by name and seed and rebuilt with HasherByName.
//
// # Thread Safety
//
// A Filter has no internal locking. Concurrent Contains calls are safe while
// no goroutine inserts.
package sparsebloom
