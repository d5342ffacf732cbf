package sparsebloom

import (
	"context"
	"fmt"
	"math/bits"
	"time"
	"unsafe"

	"github.com/hupe1980/sparsebloom/bitmap"
)

// Filter is a bloom filter over a bitmap of type B.
//
// A Filter is not safe for concurrent use when any goroutine inserts.
// Concurrent Contains calls without a writer are safe.
type Filter[B bitmap.Bitmap] struct {
	bits   B
	m      uint64
	k      uint32
	hasher Hasher
	count  uint64

	logger  *Logger
	metrics MetricsCollector
}

// New creates a filter of m bits and k probes backed by a compressed bitmap.
func New(m uint64, k uint32, opts ...Option) (*Filter[*bitmap.Compressed], error) {
	if err := validate(m, k); err != nil {
		return nil, err
	}
	return newFilter(bitmap.NewCompressed(m), m, k, "compressed", opts)
}

// NewDense creates a filter of m bits and k probes backed by a dense bitmap.
// Dense filters suit bulk loading; see Promote.
func NewDense(m uint64, k uint32, opts ...Option) (*Filter[*bitmap.Dense], error) {
	if err := validate(m, k); err != nil {
		return nil, err
	}
	return newFilter(bitmap.NewDense(m), m, k, "dense", opts)
}

// NewWithBitmap creates a filter over a caller-supplied bitmap, which may
// already be populated. The bitmap must address at least m bits.
func NewWithBitmap[B bitmap.Bitmap](b B, m uint64, k uint32, opts ...Option) (*Filter[B], error) {
	if err := validate(m, k); err != nil {
		return nil, err
	}
	if c := b.Capacity(); c < m {
		return nil, &ErrBitmapTooSmall{
			M:        m,
			Capacity: c,
			cause:    &bitmap.CapacityMismatchError{Left: m, Right: c},
		}
	}
	return newFilter(b, m, k, fmt.Sprintf("%T", b), opts)
}

// NewWithEstimates creates a compressed filter sized for n items at false
// positive probability p.
func NewWithEstimates(n uint64, p float64, opts ...Option) (*Filter[*bitmap.Compressed], error) {
	if !(p > 0 && p < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	m, k := EstimateParameters(n, p)
	return New(m, k, opts...)
}

// NewWithSize creates a compressed filter from a key-width preset.
func NewWithSize(size FilterSize, opts ...Option) (*Filter[*bitmap.Compressed], error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: unsupported filter size %d", ErrInvalidM, size)
	}
	return New(size.M(), size.K(), opts...)
}

func validate(m uint64, k uint32) error {
	if m == 0 {
		return ErrInvalidM
	}
	if k == 0 {
		return ErrInvalidK
	}
	return nil
}

func newFilter[B bitmap.Bitmap](b B, m uint64, k uint32, backing string, opts []Option) (*Filter[B], error) {
	o := applyOptions(opts)

	f := &Filter[B]{
		bits:    b,
		m:       m,
		k:       k,
		hasher:  o.hasher,
		count:   o.count,
		logger:  o.logger.WithFilter(m, k),
		metrics: o.metricsCollector,
	}
	f.logger.LogCreate(context.Background(), backing, hasherName(f.hasher))
	return f, nil
}

func hasherName(h Hasher) string {
	if sh, ok := h.(SeededHasher); ok {
		return sh.Name()
	}
	return fmt.Sprintf("%T", h)
}

// probes derives the base and step of the probe sequence for item.
func (f *Filter[B]) probes(item []byte) (uint64, uint64) {
	h1, h2 := f.hasher.Sum128(item)
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

// probe returns (h1 + i·h2) mod m without intermediate overflow.
func probe(h1, h2 uint64, i uint32, m uint64) uint64 {
	hi, lo := bits.Mul64(uint64(i), h2)
	lo, carry := bits.Add64(lo, h1, 0)
	return bits.Rem64(hi+carry, lo, m)
}

// Insert adds item to the filter.
func (f *Filter[B]) Insert(item []byte) error {
	_, err := f.insert(item)
	return err
}

// InsertString adds s to the filter.
func (f *Filter[B]) InsertString(s string) error {
	return f.Insert(stringBytes(s))
}

// TestAndInsert reports whether item was possibly present and adds it.
func (f *Filter[B]) TestAndInsert(item []byte) (bool, error) {
	return f.insert(item)
}

func (f *Filter[B]) insert(item []byte) (bool, error) {
	h1, h2 := f.probes(item)

	present := true
	newBits := 0
	for i := range f.k {
		prev, err := f.bits.Set(probe(h1, h2, i, f.m))
		if err != nil {
			return false, err
		}
		if !prev {
			present = false
			newBits++
		}
	}
	f.count++
	f.metrics.RecordInsert(newBits)
	return present, nil
}

// Contains reports whether item is possibly in the filter. A false result
// is definite.
func (f *Filter[B]) Contains(item []byte) (bool, error) {
	h1, h2 := f.probes(item)

	for i := range f.k {
		ok, err := f.bits.Get(probe(h1, h2, i, f.m))
		if err != nil {
			return false, err
		}
		if !ok {
			f.metrics.RecordQuery(false)
			return false, nil
		}
	}
	f.metrics.RecordQuery(true)
	return true, nil
}

// ContainsString reports whether s is possibly in the filter.
func (f *Filter[B]) ContainsString(s string) (bool, error) {
	return f.Contains(stringBytes(s))
}

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// M returns the number of addressable bits.
func (f *Filter[B]) M() uint64 { return f.m }

// K returns the number of probes per item.
func (f *Filter[B]) K() uint32 { return f.k }

// Hasher returns the hasher probes are derived from.
func (f *Filter[B]) Hasher() Hasher { return f.hasher }

// Bitmap returns the backing bitmap. Modifying it directly can introduce
// false negatives.
func (f *Filter[B]) Bitmap() B { return f.bits }

// Count returns the number of Insert calls, duplicates included.
func (f *Filter[B]) Count() uint64 { return f.count }

// EstimatedFalsePositiveRate returns the theoretical false positive
// probability at the current Count.
func (f *Filter[B]) EstimatedFalsePositiveRate() float64 {
	return FalsePositiveRate(f.m, f.k, f.count)
}

// FillRatio returns the fraction of the m bits that are set.
func (f *Filter[B]) FillRatio() float64 {
	return float64(f.bits.CountOnes()) / float64(f.m)
}

// Promote converts a dense filter into a compressed one with the same
// geometry, hasher and contents. f is left unchanged.
func Promote(f *Filter[*bitmap.Dense]) *Filter[*bitmap.Compressed] {
	start := time.Now()
	c := bitmap.Promote(f.bits)
	elapsed := time.Since(start)

	f.metrics.RecordPromotion(c.BlockCount(), elapsed)
	f.logger.LogPromotion(context.Background(), c.BlockCount(), c.ByteSize(), elapsed)

	return &Filter[*bitmap.Compressed]{
		bits:    c,
		m:       f.m,
		k:       f.k,
		hasher:  f.hasher,
		count:   f.count,
		logger:  f.logger,
		metrics: f.metrics,
	}
}

// Union returns a filter holding every item of a and b. The filters must
// share m, k and hasher. Count of the result is the sum of both counts.
func Union(a, b *Filter[*bitmap.Compressed]) (*Filter[*bitmap.Compressed], error) {
	u, err := union(a, b)
	a.logger.LogUnion(context.Background(), blocksOf(u), err)
	return u, err
}

func union(a, b *Filter[*bitmap.Compressed]) (*Filter[*bitmap.Compressed], error) {
	if a.m != b.m {
		return nil, &bitmap.CapacityMismatchError{Left: a.m, Right: b.m}
	}
	if a.k != b.k {
		return nil, fmt.Errorf("%w: %d != %d", ErrKMismatch, a.k, b.k)
	}
	if !sameHasher(a.hasher, b.hasher) {
		return nil, ErrHasherMismatch
	}

	bm, err := a.bits.Union(b.bits)
	if err != nil {
		return nil, err
	}
	return &Filter[*bitmap.Compressed]{
		bits:    bm,
		m:       a.m,
		k:       a.k,
		hasher:  a.hasher,
		count:   a.count + b.count,
		logger:  a.logger,
		metrics: a.metrics,
	}, nil
}

func blocksOf(f *Filter[*bitmap.Compressed]) int {
	if f == nil {
		return 0
	}
	return f.bits.BlockCount()
}
