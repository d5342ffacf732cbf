package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

const (
	// Version is the format version written by this package.
	Version = 1

	sectionHeaderSize  = 48
	envelopeHeaderSize = 40
	wordSize           = 8
)

var (
	sectionMagic  = [4]byte{'S', 'B', 'M', '1'}
	envelopeMagic = [4]byte{'S', 'B', 'F', '1'}
)

// Kind identifies the bitmap backing stored in a section.
type Kind uint8

const (
	// KindDense is a section holding a dense bitmap.
	KindDense Kind = 1
	// KindCompressed is a section holding a compressed bitmap.
	KindCompressed Kind = 2
)

// String returns the lower-case name of k.
func (k Kind) String() string {
	switch k {
	case KindDense:
		return "dense"
	case KindCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type sectionHeader struct {
	kind        Kind
	compression Compression
	capacity    uint64
	mapWords    uint64
	storeWords  uint64
	payloadLen  uint64
	checksum    uint32
}

func (h *sectionHeader) marshal() []byte {
	b := make([]byte, sectionHeaderSize)
	copy(b[0:4], sectionMagic[:])
	b[4] = Version
	b[5] = byte(h.kind)
	b[6] = byte(h.compression)
	binary.LittleEndian.PutUint64(b[8:], h.capacity)
	binary.LittleEndian.PutUint64(b[16:], h.mapWords)
	binary.LittleEndian.PutUint64(b[24:], h.storeWords)
	binary.LittleEndian.PutUint64(b[32:], h.payloadLen)
	binary.LittleEndian.PutUint32(b[40:], h.checksum)
	return b
}

func parseSectionHeader(b []byte) (sectionHeader, error) {
	if len(b) < sectionHeaderSize {
		return sectionHeader{}, fmt.Errorf("%w: section header", ErrTruncated)
	}
	if [4]byte(b[0:4]) != sectionMagic {
		return sectionHeader{}, fmt.Errorf("%w: section %q", ErrBadMagic, b[0:4])
	}
	if b[4] != Version {
		return sectionHeader{}, fmt.Errorf("%w: section version %d", ErrBadVersion, b[4])
	}

	h := sectionHeader{
		kind:        Kind(b[5]),
		compression: Compression(b[6]),
		capacity:    binary.LittleEndian.Uint64(b[8:]),
		mapWords:    binary.LittleEndian.Uint64(b[16:]),
		storeWords:  binary.LittleEndian.Uint64(b[24:]),
		payloadLen:  binary.LittleEndian.Uint64(b[32:]),
		checksum:    binary.LittleEndian.Uint32(b[40:]),
	}
	if !h.compression.valid() {
		return sectionHeader{}, fmt.Errorf("%w: compression %d", ErrBadKind, b[6])
	}
	return h, h.validate()
}

// validate checks the word counts against the capacity.
func (h *sectionHeader) validate() error {
	blocks := wordsFor(h.capacity)
	switch h.kind {
	case KindDense:
		if h.mapWords != 0 || h.storeWords != blocks {
			return fmt.Errorf("%w: dense section holds %d words for capacity %d", ErrTruncated, h.storeWords, h.capacity)
		}
	case KindCompressed:
		if h.mapWords != wordsFor(blocks) {
			return fmt.Errorf("%w: block map holds %d words for capacity %d", ErrTruncated, h.mapWords, h.capacity)
		}
		if h.storeWords > blocks {
			return fmt.Errorf("%w: store holds %d blocks, at most %d addressable", ErrTruncated, h.storeWords, blocks)
		}
	default:
		return fmt.Errorf("%w: %d", ErrBadKind, uint8(h.kind))
	}

	if h.rawLen() < 0 {
		return fmt.Errorf("%w: payload too large", ErrTruncated)
	}
	if h.compression == CompressionNone && h.payloadLen != uint64(h.rawLen()) {
		return fmt.Errorf("%w: payload is %d bytes, want %d", ErrTruncated, h.payloadLen, h.rawLen())
	}
	if !h.compression.canExpand(h.payloadLen, uint64(h.rawLen())) {
		return fmt.Errorf("%w: %s payload of %d bytes cannot expand to %d", ErrTruncated, h.compression, h.payloadLen, h.rawLen())
	}
	if h.payloadLen > math.MaxInt-sectionHeaderSize {
		return fmt.Errorf("%w: payload too large", ErrTruncated)
	}
	return nil
}

// rawLen returns the uncompressed payload length, or -1 on overflow.
func (h *sectionHeader) rawLen() int {
	words := h.mapWords + h.storeWords
	if words < h.mapWords || words > math.MaxInt/wordSize {
		return -1
	}
	return int(words * wordSize)
}

type envelopeHeader struct {
	m      uint64
	k      uint32
	count  uint64
	seed   uint64
	hasher string
}

func (e *envelopeHeader) size() int {
	return envelopeHeaderSize + padded(len(e.hasher))
}

func (e *envelopeHeader) marshal() []byte {
	b := make([]byte, e.size())
	copy(b[0:4], envelopeMagic[:])
	b[4] = Version
	b[5] = byte(len(e.hasher))
	binary.LittleEndian.PutUint64(b[8:], e.m)
	binary.LittleEndian.PutUint32(b[16:], e.k)
	binary.LittleEndian.PutUint64(b[24:], e.count)
	binary.LittleEndian.PutUint64(b[32:], e.seed)
	copy(b[envelopeHeaderSize:], e.hasher)
	return b
}

// parseEnvelope parses a filter envelope and returns its encoded size.
func parseEnvelope(b []byte) (envelopeHeader, int, error) {
	if len(b) < envelopeHeaderSize {
		return envelopeHeader{}, 0, fmt.Errorf("%w: filter header", ErrTruncated)
	}
	if [4]byte(b[0:4]) != envelopeMagic {
		return envelopeHeader{}, 0, fmt.Errorf("%w: filter %q", ErrBadMagic, b[0:4])
	}
	if b[4] != Version {
		return envelopeHeader{}, 0, fmt.Errorf("%w: filter version %d", ErrBadVersion, b[4])
	}

	n := int(b[5])
	size := envelopeHeaderSize + padded(n)
	if len(b) < size {
		return envelopeHeader{}, 0, fmt.Errorf("%w: hasher name", ErrTruncated)
	}
	return envelopeHeader{
		m:      binary.LittleEndian.Uint64(b[8:]),
		k:      binary.LittleEndian.Uint32(b[16:]),
		count:  binary.LittleEndian.Uint64(b[24:]),
		seed:   binary.LittleEndian.Uint64(b[32:]),
		hasher: string(b[envelopeHeaderSize : envelopeHeaderSize+n]),
	}, size, nil
}

func padded(n int) int { return (n + wordSize - 1) &^ (wordSize - 1) }

func wordsFor(bits uint64) uint64 { return bits/64 + min(bits%64, 1) }

// hostLittleEndian reports whether words can be reinterpreted in place.
var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// appendWords appends words to dst in little-endian order.
func appendWords(dst []byte, words []uint64) []byte {
	for _, w := range words {
		dst = binary.LittleEndian.AppendUint64(dst, w)
	}
	return dst
}

// wordsOf returns b as words. When alias is set and the host layout allows it
// the result shares memory with b and has len == cap; otherwise it is a copy.
func wordsOf(b []byte, alias bool) []uint64 {
	n := len(b) / wordSize
	if n == 0 {
		return nil
	}
	if alias && hostLittleEndian && uintptr(unsafe.Pointer(&b[0]))%wordSize == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
	}
	words := make([]uint64, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(b[i*wordSize:])
	}
	return words
}
