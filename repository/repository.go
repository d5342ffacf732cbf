package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/bitmap"
	"github.com/hupe1980/sparsebloom/blobstore"
	"github.com/hupe1980/sparsebloom/codec"
	"github.com/hupe1980/sparsebloom/internal/resource"
)

// Repository persists named filters in a blob store.
//
// Each filter is stored as two blobs: "<name>.sbf" holds the encoded filter
// and "<name>.json" its Manifest. The manifest is written last, so a filter
// is listed only once both blobs exist.
type Repository struct {
	store blobstore.Store
	rc    *resource.Controller
	opts  options
}

// New creates a Repository on store.
func New(store blobstore.Store, optFns ...Option) *Repository {
	opts := applyOptions(optFns)
	opts.logger = opts.logger.WithComponent("repository")
	return &Repository{
		store: store,
		rc:    resource.NewController(opts.resources),
		opts:  opts,
	}
}

func validName(name string) error {
	if name == "" || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save encodes f and writes it under name, replacing an existing filter.
func (r *Repository) Save(ctx context.Context, name string, f *sparsebloom.Filter[*bitmap.Compressed]) (*Manifest, error) {
	m, size, err := r.save(ctx, name, f)
	r.opts.logger.LogSave(ctx, name, size, err)
	return m, err
}

func (r *Repository) save(ctx context.Context, name string, f *sparsebloom.Filter[*bitmap.Compressed]) (*Manifest, int, error) {
	if err := validName(name); err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if _, err := codec.EncodeFilter(&buf, f, codec.WithCompression(r.opts.compression)); err != nil {
		return nil, 0, err
	}
	data := buf.Bytes()

	info, err := codec.Inspect(data)
	if err != nil {
		return nil, 0, err
	}
	m := newManifest(name, info, len(data), r.opts.now())
	doc, err := m.marshal()
	if err != nil {
		return nil, 0, err
	}

	if err := r.rc.AcquireIO(ctx, len(data)+len(doc)); err != nil {
		return nil, 0, err
	}
	if err := r.store.Put(ctx, name+filterExt, data); err != nil {
		return nil, 0, err
	}
	if err := r.store.Put(ctx, name+manifestExt, doc); err != nil {
		return nil, 0, err
	}
	return m, len(data), nil
}

// Load reads and decodes the filter saved under name.
//
// The filter is verified against its manifest. Missing filters satisfy
// errors.Is(err, blobstore.ErrNotFound).
func (r *Repository) Load(ctx context.Context, name string) (*sparsebloom.Filter[*bitmap.Compressed], error) {
	f, size, err := r.load(ctx, name)
	r.opts.logger.LogLoad(ctx, name, size, err)
	return f, err
}

func (r *Repository) load(ctx context.Context, name string) (*sparsebloom.Filter[*bitmap.Compressed], int64, error) {
	if err := validName(name); err != nil {
		return nil, 0, err
	}

	m, err := r.Manifest(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	b, err := r.store.Open(ctx, name+filterExt)
	if err != nil {
		return nil, 0, err
	}
	defer b.Close()

	size := b.Size()
	if err := r.rc.AcquireIO(ctx, int(size)); err != nil {
		return nil, size, err
	}

	// Non-resident blobs are buffered in full before decoding.
	if _, ok := b.(blobstore.Mappable); !ok {
		if err := r.rc.AcquireMemory(size); err != nil {
			return nil, size, fmt.Errorf("repository: load %s: %w", name, err)
		}
		defer r.rc.ReleaseMemory(size)
	}

	data, err := blobstore.ReadAll(b)
	if err != nil {
		return nil, size, err
	}

	info, err := codec.Inspect(data)
	if err != nil {
		return nil, size, err
	}
	if !m.matches(info, len(data)) {
		return nil, size, fmt.Errorf("%w: %s", ErrManifestMismatch, name)
	}

	decoded := info.DecodedBytes()
	if err := r.rc.AcquireMemory(decoded); err != nil {
		return nil, size, fmt.Errorf("repository: load %s: %w", name, err)
	}
	defer r.rc.ReleaseMemory(decoded)

	// UnmarshalFilter copies, so the result outlives the blob.
	f, err := codec.UnmarshalFilter(data, r.opts.filterOptions...)
	if err != nil {
		return nil, size, err
	}
	return f, size, nil
}

// Manifest reads the manifest of the filter saved under name.
func (r *Repository) Manifest(ctx context.Context, name string) (*Manifest, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	b, err := r.store.Open(ctx, name+manifestExt)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data, err := blobstore.ReadAll(b)
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}

// List returns the sorted names of all saved filters.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	blobs, err := r.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, blob := range blobs {
		if name, ok := strings.CutSuffix(blob, manifestExt); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadAll loads the named filters concurrently. The number of loads in
// flight is bounded by WithMaxConcurrency. The first error cancels the
// remaining loads.
func (r *Repository) LoadAll(ctx context.Context, names []string) (map[string]*sparsebloom.Filter[*bitmap.Compressed], error) {
	var mu sync.Mutex
	out := make(map[string]*sparsebloom.Filter[*bitmap.Compressed], len(names))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := r.rc.AcquireWorker(ctx); err != nil {
				return err
			}
			defer r.rc.ReleaseWorker()

			f, err := r.Load(ctx, name)
			if err != nil {
				return fmt.Errorf("repository: load %s: %w", name, err)
			}

			mu.Lock()
			out[name] = f
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the filter saved under name. The manifest is removed first
// so a partially deleted filter is no longer listed.
func (r *Repository) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return errors.Join(
		r.store.Delete(ctx, name+manifestExt),
		r.store.Delete(ctx, name+filterExt),
	)
}
