package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/bitmap"
)

// maxEagerRead bounds the buffer allocated up front from an untrusted length.
const maxEagerRead = 64 << 20

// DecodeCompressed reads one compressed-kind section from r.
func DecodeCompressed(r io.Reader) (*bitmap.Compressed, error) {
	h, payload, err := readSection(r)
	if err != nil {
		return nil, err
	}
	return compressedFromPayload(h, payload, true)
}

// DecodeDense reads one dense-kind section from r.
func DecodeDense(r io.Reader) (*bitmap.Dense, error) {
	h, payload, err := readSection(r)
	if err != nil {
		return nil, err
	}
	return denseFromPayload(h, payload, true)
}

// DecodeFilter reads a filter written by EncodeFilter. opts are applied to
// the rebuilt filter; hasher and count always come from the input.
func DecodeFilter(r io.Reader, opts ...sparsebloom.Option) (*sparsebloom.Filter[*bitmap.Compressed], error) {
	fixed := make([]byte, envelopeHeaderSize)
	if err := readFull(r, fixed); err != nil {
		return nil, err
	}
	if _, _, err := parseEnvelope(fixed); err != nil && !errors.Is(err, ErrTruncated) {
		return nil, err
	}

	head := append(fixed, make([]byte, padded(int(fixed[5])))...)
	if err := readFull(r, head[envelopeHeaderSize:]); err != nil {
		return nil, err
	}
	env, _, err := parseEnvelope(head)
	if err != nil {
		return nil, err
	}

	bm, err := DecodeCompressed(r)
	if err != nil {
		return nil, err
	}
	return newFilter(env, bm, opts)
}

// UnmarshalCompressed decodes a compressed-kind section from data. The result
// does not reference data.
func UnmarshalCompressed(data []byte) (*bitmap.Compressed, error) {
	h, payload, err := sectionFromBytes(data)
	if err != nil {
		return nil, err
	}
	return compressedFromPayload(h, payload, false)
}

// UnmarshalDense decodes a dense-kind section from data. The result does not
// reference data.
func UnmarshalDense(data []byte) (*bitmap.Dense, error) {
	h, payload, err := sectionFromBytes(data)
	if err != nil {
		return nil, err
	}
	return denseFromPayload(h, payload, false)
}

// UnmarshalFilter decodes a filter written by EncodeFilter from data. The
// result does not reference data.
func UnmarshalFilter(data []byte, opts ...sparsebloom.Option) (*sparsebloom.Filter[*bitmap.Compressed], error) {
	env, n, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}
	bm, err := UnmarshalCompressed(data[n:])
	if err != nil {
		return nil, err
	}
	return newFilter(env, bm, opts)
}

func newFilter(env envelopeHeader, bm *bitmap.Compressed, opts []sparsebloom.Option) (*sparsebloom.Filter[*bitmap.Compressed], error) {
	if c := bm.Capacity(); c != env.m {
		return nil, fmt.Errorf("%w: filter width against bitmap: %w", ErrInvariantViolation, &bitmap.CapacityMismatchError{Left: env.m, Right: c})
	}
	h, err := sparsebloom.HasherByName(env.hasher, env.seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownHasher, err)
	}

	opts = append(opts[:len(opts):len(opts)], sparsebloom.WithHasher(h), sparsebloom.WithCount(env.count))
	f, err := sparsebloom.NewWithBitmap(bm, env.m, env.k, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return f, nil
}

func readSection(r io.Reader) (sectionHeader, []byte, error) {
	hb := make([]byte, sectionHeaderSize)
	if err := readFull(r, hb); err != nil {
		return sectionHeader{}, nil, err
	}
	h, err := parseSectionHeader(hb)
	if err != nil {
		return sectionHeader{}, nil, err
	}

	var payload []byte
	if h.payloadLen <= maxEagerRead {
		payload = make([]byte, h.payloadLen)
		if err := readFull(r, payload); err != nil {
			return sectionHeader{}, nil, err
		}
	} else {
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, r, int64(h.payloadLen)); err != nil {
			return sectionHeader{}, nil, truncated(err)
		}
		payload = buf.Bytes()
	}

	if sum := Checksum(payload); sum != h.checksum {
		return sectionHeader{}, nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, sum, h.checksum)
	}
	return h, payload, nil
}

func sectionFromBytes(data []byte) (sectionHeader, []byte, error) {
	h, err := parseSectionHeader(data)
	if err != nil {
		return sectionHeader{}, nil, err
	}
	if uint64(len(data)-sectionHeaderSize) < h.payloadLen {
		return sectionHeader{}, nil, fmt.Errorf("%w: payload is %d bytes, have %d", ErrTruncated, h.payloadLen, len(data)-sectionHeaderSize)
	}

	payload := data[sectionHeaderSize : sectionHeaderSize+int(h.payloadLen)]
	if sum := Checksum(payload); sum != h.checksum {
		return sectionHeader{}, nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, sum, h.checksum)
	}
	return h, payload, nil
}

// compressedFromPayload builds a bitmap from a verified payload. owned
// reports whether payload may be adopted in place.
func compressedFromPayload(h sectionHeader, payload []byte, owned bool) (*bitmap.Compressed, error) {
	if h.kind != KindCompressed {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrBadKind, h.kind, KindCompressed)
	}

	raw, err := decompress(payload, h.compression, h.rawLen())
	if err != nil {
		return nil, err
	}
	words := wordsOf(raw, owned || h.compression != CompressionNone)

	return compressedFromWords(h, words)
}

func compressedFromWords(h sectionHeader, words []uint64) (*bitmap.Compressed, error) {
	blockMap := words[:h.mapWords:h.mapWords]
	blocks := words[h.mapWords:]

	c, err := bitmap.CompressedFromParts(h.capacity, blockMap, blocks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return c, nil
}

func denseFromPayload(h sectionHeader, payload []byte, owned bool) (*bitmap.Dense, error) {
	if h.kind != KindDense {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrBadKind, h.kind, KindDense)
	}

	raw, err := decompress(payload, h.compression, h.rawLen())
	if err != nil {
		return nil, err
	}
	words := wordsOf(raw, owned || h.compression != CompressionNone)

	d, err := bitmap.DenseFromWords(h.capacity, words)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return d, nil
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return truncated(err)
	}
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
