package codec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/bitmap"
	"github.com/hupe1980/sparsebloom/internal/mmap"
)

// Mapped is a compressed bitmap whose words live in a private file mapping.
//
// Reads fault pages in on demand. Writes into existing blocks stay private to
// the process; the first newly allocated block moves the store to the heap.
// The bitmap must not be used after Close.
type Mapped struct {
	mapping *mmap.Mapping
	bitmap  *bitmap.Compressed
}

// Bitmap returns the mapped bitmap.
func (m *Mapped) Bitmap() *bitmap.Compressed { return m.bitmap }

// Close unmaps the file.
func (m *Mapped) Close() error { return m.mapping.Close() }

// MappedFilter is a filter backed by a Mapped bitmap.
type MappedFilter struct {
	mapping *mmap.Mapping
	filter  *sparsebloom.Filter[*bitmap.Compressed]
}

// Filter returns the mapped filter.
func (m *MappedFilter) Filter() *sparsebloom.Filter[*bitmap.Compressed] { return m.filter }

// Close unmaps the file.
func (m *MappedFilter) Close() error { return m.mapping.Close() }

// Map memory-maps a file holding one uncompressed compressed-kind section
// and adopts its words in place. The payload checksum is verified first,
// which reads the file once.
func Map(path string) (*Mapped, error) {
	mp, err := mmap.OpenPrivate(path)
	if err != nil {
		return nil, err
	}

	bm, err := mapSection(mp, 0)
	if err != nil {
		return nil, errors.Join(err, mp.Close())
	}
	return &Mapped{mapping: mp, bitmap: bm}, nil
}

// MapFilter memory-maps a filter file written by EncodeFilter without
// compression. opts are applied to the rebuilt filter.
func MapFilter(path string, opts ...sparsebloom.Option) (*MappedFilter, error) {
	mp, err := mmap.OpenPrivate(path)
	if err != nil {
		return nil, err
	}

	f, err := mapFilter(mp, opts)
	if err != nil {
		return nil, errors.Join(err, mp.Close())
	}
	return &MappedFilter{mapping: mp, filter: f}, nil
}

func mapFilter(mp *mmap.Mapping, opts []sparsebloom.Option) (*sparsebloom.Filter[*bitmap.Compressed], error) {
	env, n, err := parseEnvelope(mp.Bytes())
	if err != nil {
		return nil, err
	}
	bm, err := mapSection(mp, n)
	if err != nil {
		return nil, err
	}
	return newFilter(env, bm, opts)
}

func mapSection(mp *mmap.Mapping, offset int) (*bitmap.Compressed, error) {
	h, payload, err := sectionFromBytes(mp.Bytes()[offset:])
	if err != nil {
		return nil, err
	}
	if h.kind != KindCompressed {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrBadKind, h.kind, KindCompressed)
	}
	if h.compression != CompressionNone {
		return nil, fmt.Errorf("%w: payload is %s-compressed", ErrNotMappable, h.compression)
	}

	payloadOff := offset + sectionHeaderSize
	mapBytes := int(h.mapWords) * wordSize
	if r, err := mp.Region(payloadOff, mapBytes); err == nil {
		_ = r.Advise(mmap.AccessWillNeed)
	}
	if r, err := mp.Region(payloadOff+mapBytes, len(payload)-mapBytes); err == nil {
		_ = r.Advise(mmap.AccessRandom)
	}

	return compressedFromWords(h, wordsOf(payload, true))
}
