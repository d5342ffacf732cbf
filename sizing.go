package sparsebloom

import "math"

// EstimateParameters returns the number of bits m and probes k for a filter
// expected to hold n items at a false positive probability p.
//
//	m = ceil(-n·ln(p) / (ln 2)²)
//	k = round((m/n)·ln 2), at least 1
//
// n = 0 is treated as 1. Zeros are returned for p outside (0, 1).
func EstimateParameters(n uint64, p float64) (uint64, uint32) {
	if !(p > 0 && p < 1) {
		return 0, 0
	}
	n = max(n, 1)

	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	k := math.Round(m / float64(n) * math.Ln2)
	k = min(max(k, 1), math.MaxUint32)

	if m >= 0x1p64 {
		return math.MaxUint64, uint32(k)
	}
	return uint64(m), uint32(k)
}

// FalsePositiveRate returns the theoretical false positive probability of a
// filter with m bits and k probes after n distinct insertions:
// (1 - e^(-k·n/m))^k.
func FalsePositiveRate(m uint64, k uint32, n uint64) float64 {
	if m == 0 {
		return 1
	}
	return math.Pow(1-math.Exp(-float64(k)*float64(n)/float64(m)), float64(k))
}

// FilterSize sizes a filter by the width of the key each probe consumes
// from a 64-bit hash: m = 2^(8·bytes) bits and k = 8/bytes probes.
//
// Larger keys address more bits and lower the false positive rate at a given
// load. A KeyBytes5 filter reserves a 2 GiB block map and an equally sized
// rank directory before the first insert.
type FilterSize uint8

// Filter size presets.
const (
	KeyBytes1 FilterSize = iota + 1 // 256 bits, k=8
	KeyBytes2                       // 65,536 bits, k=4
	KeyBytes3                       // 16,777,216 bits, k=2
	KeyBytes4                       // 4,294,967,296 bits, k=2
	KeyBytes5                       // 1,099,511,627,776 bits, k=1
)

// M returns the number of bits addressed by s.
func (s FilterSize) M() uint64 { return 1 << (8 * uint64(s)) }

// K returns the number of probes for s.
func (s FilterSize) K() uint32 { return 8 / uint32(s) }

// Valid reports whether s is one of the presets.
func (s FilterSize) Valid() bool { return s >= KeyBytes1 && s <= KeyBytes5 }
