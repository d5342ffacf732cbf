package bitmap

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants verifies store length, rank directory and tail bits.
func checkInvariants(t *testing.T, c *Compressed) {
	t.Helper()

	require.Equal(t, onesIn(c.blockMap), uint64(len(c.blocks)), "store length must equal block map population")

	var n uint64
	for w, word := range c.blockMap {
		require.Equal(t, n, c.ranks[w], "rank directory at word %d", w)
		n += uint64(bits.OnesCount64(word))
	}

	if len(c.blockMap) > 0 {
		require.Zero(t, c.blockMap[len(c.blockMap)-1]&^tailMask(c.NumBlocks()), "block map bits beyond range")
	}
	for _, word := range c.blocks {
		require.NotZero(t, word, "allocated blocks hold at least one bit")
	}
}

func TestCompressed_FreshIsEmpty(t *testing.T) {
	c := NewCompressed(10_000)

	for i := uint64(0); i < c.Capacity(); i++ {
		got, err := c.Get(i)
		require.NoError(t, err)
		require.False(t, got, "bit %d", i)
	}
	assert.Zero(t, c.CountOnes())
	assert.Zero(t, c.BlockCount())
	checkInvariants(t, c)
}

func TestCompressed_SetGet(t *testing.T) {
	c := NewCompressed(1000)

	prev, err := c.Set(100)
	require.NoError(t, err)
	assert.False(t, prev)

	prev, err = c.Set(100)
	require.NoError(t, err)
	assert.True(t, prev, "second Set reports the bit as already set")

	got, err := c.Get(100)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = c.Get(101)
	require.NoError(t, err)
	assert.False(t, got)

	assert.Equal(t, uint64(1), c.CountOnes())
	assert.Equal(t, 1, c.BlockCount())
	checkInvariants(t, c)
}

func TestCompressed_InsertAtRank(t *testing.T) {
	c := NewCompressed(64 * 200)

	// Allocate blocks out of order so every insert lands before, between or
	// after existing blocks.
	order := []uint64{150, 3, 199, 64, 0, 100, 65, 128}
	for _, bi := range order {
		_, err := c.Set(bi*64 + bi%64)
		require.NoError(t, err)
		checkInvariants(t, c)
	}

	var seen []uint64
	c.ForEachBlock(func(block, word uint64) bool {
		seen = append(seen, block)
		assert.Equal(t, bitMask(block*64+block%64), word)
		return true
	})
	assert.Equal(t, []uint64{0, 3, 64, 65, 100, 128, 150, 199}, seen)
}

func TestCompressed_OutOfRange(t *testing.T) {
	c := NewCompressed(100)

	_, err := c.Get(100)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = c.Set(1 << 40)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, uint64(1<<40), ie.Index)
	assert.Equal(t, uint64(100), ie.Capacity)

	assert.Zero(t, c.BlockCount(), "failed Set must not allocate")
}

func TestCompressed_ZeroCapacity(t *testing.T) {
	c := NewCompressed(0)

	_, err := c.Get(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Zero(t, c.NumBlocks())
	assert.Empty(t, c.BlockMap())
}

func TestCompressed_OneMillionBits(t *testing.T) {
	c := NewCompressed(1_000_000)

	_, err := c.Set(999_999)
	require.NoError(t, err)

	assert.Equal(t, 1, c.BlockCount())
	assert.Equal(t, uint64(15_625), c.NumBlocks())
	assert.Len(t, c.BlockMap(), 245)

	got, err := c.Get(999_999)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = c.Get(999_998)
	require.NoError(t, err)
	assert.False(t, got)
	checkInvariants(t, c)
}

func TestCompressed_OrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const capacity = 50_000

	indices := make([]uint64, 2000)
	for i := range indices {
		indices[i] = rng.Uint64N(capacity)
	}

	a := NewCompressed(capacity)
	for _, i := range indices {
		_, err := a.Set(i)
		require.NoError(t, err)
	}

	shuffled := append([]uint64(nil), indices...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	b := NewCompressed(capacity)
	for _, i := range shuffled {
		_, err := b.Set(i)
		require.NoError(t, err)
	}

	assert.Equal(t, a.BlockMap(), b.BlockMap())
	assert.Equal(t, a.Blocks(), b.Blocks())
	checkInvariants(t, a)
	checkInvariants(t, b)
}

func TestCompressed_RandomSequences(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		capacity := 1 + rng.Uint64N(100_000)

		c := NewCompressed(capacity)
		want := make(map[uint64]struct{})
		for range 500 {
			i := rng.Uint64N(capacity)
			prev, err := c.Set(i)
			require.NoError(t, err)

			_, had := want[i]
			require.Equal(t, had, prev, "seed %d index %d", seed, i)
			want[i] = struct{}{}
		}
		checkInvariants(t, c)
		require.Equal(t, uint64(len(want)), c.CountOnes())

		for i := range want {
			got, err := c.Get(i)
			require.NoError(t, err)
			require.True(t, got)
		}
	}
}

func TestCompressedFromParts(t *testing.T) {
	src := NewCompressed(1000)
	for _, i := range []uint64{1, 70, 999} {
		_, err := src.Set(i)
		require.NoError(t, err)
	}

	t.Run("valid", func(t *testing.T) {
		c, err := CompressedFromParts(1000, append([]uint64(nil), src.BlockMap()...), append([]uint64(nil), src.Blocks()...))
		require.NoError(t, err)
		checkInvariants(t, c)

		for _, i := range []uint64{1, 70, 999} {
			got, err := c.Get(i)
			require.NoError(t, err)
			assert.True(t, got)
		}
	})

	tests := []struct {
		name     string
		capacity uint64
		blockMap []uint64
		blocks   []uint64
	}{
		{"store shorter than population", 1000, []uint64{0b111}, []uint64{1, 2}},
		{"store longer than population", 1000, []uint64{0b1}, []uint64{1, 2}},
		{"block map too long", 1000, []uint64{0b1, 0}, []uint64{1}},
		{"block map too short", 1 << 20, []uint64{0b1}, []uint64{1}},
		{"block map beyond range", 1000, []uint64{1 << 16}, []uint64{1}},
		{"store bits beyond capacity", 1000, []uint64{1 << 15}, []uint64{1 << 63}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompressedFromParts(tt.capacity, tt.blockMap, tt.blocks)
			require.ErrorIs(t, err, ErrInvariantViolation)
		})
	}

	t.Run("population mismatch details", func(t *testing.T) {
		_, err := CompressedFromParts(1000, []uint64{0b111}, []uint64{1})

		var ie *InvariantError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, uint64(3), ie.BlockMapOnes)
		assert.Equal(t, uint64(1), ie.StoredBlocks)
	})
}

func TestCompressed_Union(t *testing.T) {
	a := NewCompressed(10_000)
	b := NewCompressed(10_000)
	for _, i := range []uint64{0, 64, 5000} {
		_, _ = a.Set(i)
	}
	for _, i := range []uint64{1, 128, 5000, 9999} {
		_, _ = b.Set(i)
	}

	u, err := a.Union(b)
	require.NoError(t, err)
	checkInvariants(t, u)

	for _, i := range []uint64{0, 1, 64, 128, 5000, 9999} {
		got, err := u.Get(i)
		require.NoError(t, err)
		assert.True(t, got, "bit %d", i)
	}
	assert.Equal(t, uint64(6), u.CountOnes())
	assert.Equal(t, 5, u.BlockCount())

	assert.Equal(t, uint64(3), a.CountOnes(), "inputs are untouched")

	_, err = a.Union(NewCompressed(10))
	require.ErrorIs(t, err, ErrCapacityMismatch)
}

func TestCompressed_ResetAndShrink(t *testing.T) {
	c := NewCompressed(64 * 64 * 4)
	for i := uint64(0); i < c.Capacity(); i += 64 {
		_, _ = c.Set(i)
	}
	require.Equal(t, 256, c.BlockCount())

	c.Reset()
	assert.Zero(t, c.CountOnes())
	assert.Zero(t, c.BlockCount())
	checkInvariants(t, c)

	_, err := c.Set(4000)
	require.NoError(t, err)
	c.ShrinkToFit()
	assert.Equal(t, 1, cap(c.Blocks()))
	assert.Equal(t, (4+4+1)*8, c.ByteSize())
	checkInvariants(t, c)
}

func TestCompressed_CloneIsIndependent(t *testing.T) {
	c := NewCompressed(1000)
	_, _ = c.Set(10)

	clone := c.Clone()
	_, _ = clone.Set(900)

	got, _ := c.Get(900)
	assert.False(t, got)
	assert.Equal(t, 2, clone.BlockCount())
	assert.Equal(t, 1, c.BlockCount())
}

func BenchmarkCompressed_Set(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 7))
	const capacity = 1 << 24
	idx := make([]uint64, 4096)
	for i := range idx {
		idx[i] = rng.Uint64N(capacity)
	}

	c := NewCompressed(capacity)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Set(idx[i%len(idx)])
	}
}

func BenchmarkCompressed_Get(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 7))
	const capacity = 1 << 24
	c := NewCompressed(capacity)
	idx := make([]uint64, 4096)
	for i := range idx {
		idx[i] = rng.Uint64N(capacity)
		_, _ = c.Set(idx[i])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(idx[i%len(idx)] ^ 1)
	}
}
