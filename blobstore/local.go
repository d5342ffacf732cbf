package blobstore

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/sparsebloom/internal/fs"
	"github.com/hupe1980/sparsebloom/internal/mmap"
)

// LocalStore implements Store on a local directory.
//
// Blob names use forward slashes and map to paths below the root. Writes go
// to a temporary file that is renamed into place; reads map the file.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem sets the file system used for writes, deletes and listing.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		s.fs = fsys
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store directory.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(name string) (string, error) {
	p := filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(p) || strings.HasSuffix(name, fs.TempSuffix) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, p), nil
}

// Open maps the blob read-only. The returned Blob implements Mappable.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(p)
	if err != nil {
		return nil, err
	}
	if err := m.Advise(mmap.AccessSequential); err != nil {
		return nil, errors.Join(err, m.Close())
	}
	return &localBlob{m: m}, nil
}

// Put writes the blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(s.fs, p, data, 0o644)
}

// Delete removes the blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the sorted names below the root starting with prefix.
// In-flight temporary files are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(ctx, "", prefix, &names); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *LocalStore) walk(ctx context.Context, dir, prefix string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(filepath.Join(s.root, filepath.FromSlash(dir)))
	if err != nil {
		if dir == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := path.Join(dir, e.Name())
		if e.IsDir() {
			// Only descend into directories that can still match.
			if strings.HasPrefix(name+"/", prefix) || strings.HasPrefix(prefix, name+"/") {
				if err := s.walk(ctx, name, prefix, names); err != nil {
					return err
				}
			}
			continue
		}
		if strings.HasSuffix(name, fs.TempSuffix) || !strings.HasPrefix(name, prefix) {
			continue
		}
		*names = append(*names, name)
	}
	return nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	if b.m.Size() > 0 && b.m.Bytes() == nil {
		return nil, mmap.ErrClosed
	}
	return b.m.Bytes(), nil
}
