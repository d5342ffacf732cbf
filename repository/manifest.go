package repository

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/hupe1980/sparsebloom/codec"
)

// ManifestVersion is the version of the manifest document.
const ManifestVersion = 1

const (
	filterExt   = ".sbf"
	manifestExt = ".json"
)

// Manifest describes a saved filter. It is stored next to the filter blob
// and can be read without decoding the filter.
type Manifest struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	M           uint64    `json:"m"`
	K           uint32    `json:"k"`
	Count       uint64    `json:"count"`
	Hasher      string    `json:"hasher"`
	Seed        uint64    `json:"seed"`
	Blocks      uint64    `json:"blocks"`
	Compression string    `json:"compression"`
	Checksum    uint32    `json:"crc32c"`
	Bytes       int64     `json:"bytes"`
	SavedAt     time.Time `json:"saved_at"`
}

func newManifest(name string, info codec.Info, size int, savedAt time.Time) *Manifest {
	return &Manifest{
		Version:     ManifestVersion,
		Name:        name,
		M:           info.M,
		K:           info.K,
		Count:       info.Count,
		Hasher:      info.Hasher,
		Seed:        info.Seed,
		Blocks:      info.Blocks,
		Compression: info.Compression.String(),
		Checksum:    info.Checksum,
		Bytes:       int64(size),
		SavedAt:     savedAt.UTC(),
	}
}

func (m *Manifest) marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func parseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("repository: parse manifest: %w", err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("%w: %d", ErrIncompatibleManifest, m.Version)
	}
	return m, nil
}

// matches reports whether a filter blob described by info and size is the
// one the manifest was written for.
func (m *Manifest) matches(info codec.Info, size int) bool {
	return m.M == info.M && m.K == info.K && m.Checksum == info.Checksum && m.Bytes == int64(size)
}
