package sparsebloom

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hasher produces the two 64-bit hash halves a Filter derives its probes
// from. Implementations must be deterministic for the lifetime of a filter.
type Hasher interface {
	Sum128(data []byte) (h1, h2 uint64)
}

// SeededHasher is a Hasher that can be rebuilt from a name and a seed, which
// is what persisting a filter requires.
type SeededHasher interface {
	Hasher
	Name() string
	Seed() uint64
}

// Registered hasher names.
const (
	HasherMurmur3 = "murmur3"
	HasherXXHash  = "xxhash"
)

// xxhashSeedSalt separates the seeds of the two xxhash evaluations.
const xxhashSeedSalt = 0x9e3779b97f4a7c15

// Murmur3Hasher computes both halves with a single 128-bit murmur3 pass.
type Murmur3Hasher struct {
	seed uint64
}

// NewMurmur3Hasher returns a murmur3 hasher. Only the low 32 bits of seed
// feed the hash function.
func NewMurmur3Hasher(seed uint64) *Murmur3Hasher {
	return &Murmur3Hasher{seed: seed}
}

// Sum128 implements Hasher.
func (h *Murmur3Hasher) Sum128(data []byte) (uint64, uint64) {
	return murmur3.Sum128WithSeed(data, uint32(h.seed))
}

// Name implements SeededHasher.
func (h *Murmur3Hasher) Name() string { return HasherMurmur3 }

// Seed implements SeededHasher.
func (h *Murmur3Hasher) Seed() uint64 { return h.seed }

// XXHasher computes the halves with two independently seeded xxhash64 passes.
type XXHasher struct {
	seed uint64
}

// NewXXHasher returns an xxhash hasher.
func NewXXHasher(seed uint64) *XXHasher {
	return &XXHasher{seed: seed}
}

// Sum128 implements Hasher.
func (h *XXHasher) Sum128(data []byte) (uint64, uint64) {
	var d xxhash.Digest

	d.ResetWithSeed(h.seed)
	_, _ = d.Write(data)
	h1 := d.Sum64()

	d.ResetWithSeed(h.seed ^ xxhashSeedSalt)
	_, _ = d.Write(data)
	return h1, d.Sum64()
}

// Name implements SeededHasher.
func (h *XXHasher) Name() string { return HasherXXHash }

// Seed implements SeededHasher.
func (h *XXHasher) Seed() uint64 { return h.seed }

// NewRandomHasher returns a murmur3 hasher keyed with a seed drawn from the
// operating system's random source. The seed is fixed from then on and is
// persisted with the filter.
func NewRandomHasher() *Murmur3Hasher {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return NewMurmur3Hasher(binary.LittleEndian.Uint64(b[:]))
}

// HasherByName rebuilds a persisted seeded hasher.
func HasherByName(name string, seed uint64) (SeededHasher, error) {
	switch name {
	case HasherMurmur3:
		return NewMurmur3Hasher(seed), nil
	case HasherXXHash:
		return NewXXHasher(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}

// sameHasher reports whether a and b are known to produce identical hashes.
func sameHasher(a, b Hasher) bool {
	if ta, tb := reflect.TypeOf(a), reflect.TypeOf(b); ta == tb && ta != nil && ta.Comparable() && a == b {
		return true
	}
	sa, okA := a.(SeededHasher)
	sb, okB := b.(SeededHasher)
	return okA && okB && sa.Name() == sb.Name() && sa.Seed() == sb.Seed()
}
