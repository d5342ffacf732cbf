package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of an encoded section.
type Compression uint8

const (
	// CompressionNone stores the payload as raw little-endian words.
	CompressionNone Compression = 0
	// CompressionLZ4 stores the payload as an LZ4 block (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores the payload as a zstd frame (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the lower-case name of c.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool { return c <= CompressionZSTD }

// maxExpansion bounds how many raw bytes one stored byte can decode to. An
// LZ4 match-length byte adds at most 255 bytes of output. The smallest zstd
// block is a 4-byte RLE block producing at most 128 KiB.
func (c Compression) maxExpansion() uint64 {
	switch c {
	case CompressionLZ4:
		return 255
	case CompressionZSTD:
		return 128 << 10 / 4
	default:
		return 1
	}
}

// canExpand reports whether stored bytes can decode to raw bytes under c.
func (c Compression) canExpand(stored, raw uint64) bool {
	r := c.maxExpansion()
	return (raw+r-1)/r <= stored
}

// ZSTD encoder pool for efficiency
var zstdEncoderPool sync.Pool

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

// newZstdDecoder returns a decoder that refuses to produce more than
// maxSize bytes. The limit never drops below the minimum zstd window.
func newZstdDecoder(maxSize int) (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(max(maxSize, zstd.MinWindowSize))),
	)
}

// compress returns the stored form of raw and the compression actually used.
// Payloads that do not shrink by at least 10% are stored uncompressed.
func compress(raw []byte, c Compression) ([]byte, Compression) {
	if c == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil || n == 0 {
			return raw, CompressionNone
		}
		out = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		putZstdEncoder(enc)
	default:
		return raw, CompressionNone
	}

	if float64(len(out)) > float64(len(raw))*0.9 {
		return raw, CompressionNone
	}
	return out, c
}

// decompress expands a stored payload into exactly rawLen bytes.
func decompress(stored []byte, c Compression, rawLen int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != rawLen {
			return nil, ErrTruncated
		}
		return stored, nil

	case CompressionLZ4:
		if !c.canExpand(uint64(len(stored)), uint64(rawLen)) {
			return nil, fmt.Errorf("%w: %d lz4 bytes cannot expand to %d", ErrTruncated, len(stored), rawLen)
		}
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrTruncated, err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrTruncated, n, rawLen)
		}
		return out, nil

	case CompressionZSTD:
		if !c.canExpand(uint64(len(stored)), uint64(rawLen)) {
			return nil, fmt.Errorf("%w: %d zstd bytes cannot expand to %d", ErrTruncated, len(stored), rawLen)
		}
		dec, err := newZstdDecoder(rawLen)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd: %w", err)
		}
		defer dec.Close()

		// No preallocation: the output grows with the frame up to the decoder limit.
		out, err := dec.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrTruncated, err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrTruncated, len(out), rawLen)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: compression %d", ErrBadKind, c)
	}
}
