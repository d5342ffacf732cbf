package codec

import (
	"bytes"
	"math"
)

// Info describes an encoded section or filter without decoding its payload.
type Info struct {
	// Filter is set when the input starts with a filter envelope; the filter
	// fields below are zero otherwise.
	Filter bool
	M      uint64
	K      uint32
	Count  uint64
	Hasher string
	Seed   uint64

	Kind         Kind
	Compression  Compression
	Capacity     uint64
	Blocks       uint64
	PayloadBytes uint64
	Checksum     uint32
}

// Inspect parses the headers at the start of data.
func Inspect(data []byte) (Info, error) {
	var info Info

	if len(data) >= 4 && bytes.Equal(data[:4], envelopeMagic[:]) {
		env, n, err := parseEnvelope(data)
		if err != nil {
			return Info{}, err
		}
		info = Info{
			Filter: true,
			M:      env.m,
			K:      env.k,
			Count:  env.count,
			Hasher: env.hasher,
			Seed:   env.seed,
		}
		data = data[n:]
	}

	h, err := parseSectionHeader(data)
	if err != nil {
		return Info{}, err
	}
	info.Kind = h.kind
	info.Compression = h.compression
	info.Capacity = h.capacity
	info.PayloadBytes = h.payloadLen
	info.Checksum = h.checksum
	if h.kind == KindCompressed {
		info.Blocks = h.storeWords
	}
	return info, nil
}

// DecodedBytes returns the heap a full decode of the described section
// allocates: the words plus, for compressed sections, the rank directory.
func (i Info) DecodedBytes() int64 {
	blocks := wordsFor(i.Capacity)
	words := blocks
	if i.Kind == KindCompressed {
		words = 2*wordsFor(blocks) + i.Blocks
	}
	if words > math.MaxInt64/wordSize {
		return math.MaxInt64
	}
	return int64(words * wordSize)
}
