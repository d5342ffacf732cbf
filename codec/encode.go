package codec

import (
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"unsafe"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/bitmap"
)

type encodeOptions struct {
	compression Compression
}

// Option configures encoding.
type Option func(*encodeOptions)

// WithCompression configures the payload compression. Payloads that do not
// shrink by at least 10% are stored uncompressed regardless.
func WithCompression(c Compression) Option {
	return func(o *encodeOptions) {
		o.compression = c
	}
}

func applyOptions(opts []Option) encodeOptions {
	var o encodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EncodeCompressed writes b as a compressed-kind section and returns the
// number of bytes written.
func EncodeCompressed(w io.Writer, b *bitmap.Compressed, opts ...Option) (int64, error) {
	return writeSection(w, KindCompressed, b.Capacity(), b.BlockMap(), b.Blocks(), applyOptions(opts))
}

// EncodeDense writes d as a dense-kind section and returns the number of
// bytes written.
func EncodeDense(w io.Writer, d *bitmap.Dense, opts ...Option) (int64, error) {
	words := d.Words()[:wordsFor(d.Capacity())]
	return writeSection(w, KindDense, d.Capacity(), nil, words, applyOptions(opts))
}

// EncodeFilter writes a filter envelope followed by the filter's bitmap and
// returns the number of bytes written.
//
// The filter's hasher must implement sparsebloom.SeededHasher and its bitmap
// must address exactly f.M() bits.
func EncodeFilter(w io.Writer, f *sparsebloom.Filter[*bitmap.Compressed], opts ...Option) (int64, error) {
	if c := f.Bitmap().Capacity(); c != f.M() {
		return 0, fmt.Errorf("codec: filter width against bitmap: %w", &bitmap.CapacityMismatchError{Left: f.M(), Right: c})
	}
	sh, ok := f.Hasher().(sparsebloom.SeededHasher)
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrHasherNotPersistable, f.Hasher())
	}
	if len(sh.Name()) > math.MaxUint8 {
		return 0, fmt.Errorf("%w: hasher name longer than %d bytes", ErrHasherNotPersistable, math.MaxUint8)
	}

	env := envelopeHeader{
		m:      f.M(),
		k:      f.K(),
		count:  f.Count(),
		seed:   sh.Seed(),
		hasher: sh.Name(),
	}
	n, err := w.Write(env.marshal())
	if err != nil {
		return int64(n), err
	}

	sn, err := EncodeCompressed(w, f.Bitmap(), opts...)
	return int64(n) + sn, err
}

func writeSection(w io.Writer, kind Kind, capacity uint64, mapWords, storeWords []uint64, o encodeOptions) (int64, error) {
	if !o.compression.valid() {
		return 0, fmt.Errorf("%w: compression %d", ErrBadKind, o.compression)
	}

	h := sectionHeader{
		kind:       kind,
		capacity:   capacity,
		mapWords:   uint64(len(mapWords)),
		storeWords: uint64(len(storeWords)),
	}

	var parts [][]byte
	if o.compression == CompressionNone {
		parts = [][]byte{wordBytes(mapWords), wordBytes(storeWords)}
	} else {
		raw := make([]byte, 0, (len(mapWords)+len(storeWords))*wordSize)
		raw = appendWords(raw, mapWords)
		raw = appendWords(raw, storeWords)

		stored, used := compress(raw, o.compression)
		parts = [][]byte{stored}
		h.compression = used
	}

	for _, p := range parts {
		h.payloadLen += uint64(len(p))
		h.checksum = crc32.Update(h.checksum, crc32cTable, p)
	}

	var written int64
	n, err := w.Write(h.marshal())
	written += int64(n)
	if err != nil {
		return written, err
	}
	for _, p := range parts {
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// wordBytes returns the little-endian bytes of words, without copying when
// the host is little-endian.
func wordBytes(words []uint64) []byte {
	if len(words) == 0 {
		return nil
	}
	if hostLittleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*wordSize)
	}
	return appendWords(make([]byte, 0, len(words)*wordSize), words)
}
