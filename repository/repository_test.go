package repository

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/bitmap"
	"github.com/hupe1980/sparsebloom/blobstore"
	"github.com/hupe1980/sparsebloom/codec"
)

func newFilter(t *testing.T, items ...string) *sparsebloom.Filter[*bitmap.Compressed] {
	t.Helper()
	f, err := sparsebloom.NewWithEstimates(1000, 0.01)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, f.InsertString(item))
	}
	return f
}

func requireContainsAll(t *testing.T, f *sparsebloom.Filter[*bitmap.Compressed], items ...string) {
	t.Helper()
	for _, item := range items {
		ok, err := f.ContainsString(item)
		require.NoError(t, err)
		require.True(t, ok, item)
	}
}

// opaqueStore hides Mappable so loads take the buffered path.
type opaqueStore struct {
	blobstore.Store
}

func (s opaqueStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return struct{ blobstore.Blob }{b}, nil
}

func TestSaveLoad(t *testing.T) {
	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"opaque": opaqueStore{blobstore.NewMemoryStore()},
	}
	items := []string{"alpha", "bravo", "charlie"}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := New(store)
			f := newFilter(t, items...)

			m, err := repo.Save(ctx, "users", f)
			require.NoError(t, err)
			assert.Equal(t, f.M(), m.M)
			assert.Equal(t, f.K(), m.K)
			assert.Equal(t, uint64(3), m.Count)
			assert.Equal(t, "zstd", m.Compression)
			assert.Positive(t, m.Bytes)

			got, err := repo.Load(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, f.M(), got.M())
			assert.Equal(t, f.K(), got.K())
			assert.Equal(t, f.Count(), got.Count())
			assert.Equal(t, f.Bitmap().Blocks(), got.Bitmap().Blocks())
			requireContainsAll(t, got, items...)
		})
	}
}

func TestManifest(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := New(store, WithCompression(codec.CompressionNone))
	repo.opts.now = func() time.Time { return savedAt }

	f := newFilter(t, "x", "y")
	saved, err := repo.Save(ctx, "set/a", f)
	require.NoError(t, err)

	m, err := repo.Manifest(ctx, "set/a")
	require.NoError(t, err)
	assert.Equal(t, saved, m)
	assert.Equal(t, ManifestVersion, m.Version)
	assert.Equal(t, "set/a", m.Name)
	assert.Equal(t, "none", m.Compression)
	assert.Equal(t, savedAt, m.SavedAt)

	seeded := f.Hasher().(sparsebloom.SeededHasher)
	assert.Equal(t, seeded.Name(), m.Hasher)
	assert.Equal(t, seeded.Seed(), m.Seed)
	assert.Equal(t, uint64(f.Bitmap().BlockCount()), m.Blocks)

	b, err := store.Open(ctx, "set/a.json")
	require.NoError(t, err)
	raw, err := blobstore.ReadAll(b)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"m", "k", "count", "hasher", "seed", "blocks", "compression", "crc32c", "bytes", "saved_at"} {
		assert.Contains(t, doc, key)
	}
}

func TestManifest_NewerVersion(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "f.json", []byte(`{"version": 99}`)))

	_, err := New(store).Manifest(ctx, "f")
	assert.ErrorIs(t, err, ErrIncompatibleManifest)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := New(blobstore.NewMemoryStore()).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoad_ManifestMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	repo := New(store)

	_, err := repo.Save(ctx, "a", newFilter(t, "one"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, "b", newFilter(t, "two"))
	require.NoError(t, err)

	// Swap a's filter blob for b's.
	b, err := store.Open(ctx, "b.sbf")
	require.NoError(t, err)
	other, err := blobstore.ReadAll(b)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "a.sbf", other))

	_, err = repo.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrManifestMismatch)
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	repo := New(store, WithCompression(codec.CompressionNone))

	_, err := repo.Save(ctx, "f", newFilter(t, "x"))
	require.NoError(t, err)

	b, err := store.Open(ctx, "f.sbf")
	require.NoError(t, err)
	data, err := blobstore.ReadAll(b)
	require.NoError(t, err)
	corrupt := bytes.Clone(data)
	corrupt[len(corrupt)-1] ^= 0xFF
	require.NoError(t, store.Put(ctx, "f.sbf", corrupt))

	_, err = repo.Load(ctx, "f")
	assert.ErrorIs(t, err, codec.ErrChecksumMismatch)
}

func TestInvalidName(t *testing.T) {
	ctx := context.Background()
	repo := New(blobstore.NewMemoryStore())

	_, err := repo.Save(ctx, "", newFilter(t))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = repo.Load(ctx, "dir/")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, repo.Delete(ctx, ""), ErrInvalidName)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := New(blobstore.NewLocalStore(t.TempDir()))

	for _, name := range []string{"b", "a", "nested/c"} {
		_, err := repo.Save(ctx, name, newFilter(t, name))
		require.NoError(t, err)
	}

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "nested/c"}, names)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"), "delete is idempotent")

	names, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "nested/c"}, names)

	_, err = repo.Load(ctx, "a")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	repo := New(blobstore.NewMemoryStore(), WithMaxConcurrency(2), WithIOLimit(1<<30))

	var names []string
	for i := range 10 {
		name := fmt.Sprintf("shard-%02d", i)
		names = append(names, name)
		_, err := repo.Save(ctx, name, newFilter(t, name, name+"-extra"))
		require.NoError(t, err)
	}

	filters, err := repo.LoadAll(ctx, names)
	require.NoError(t, err)
	require.Len(t, filters, len(names))
	for _, name := range names {
		requireContainsAll(t, filters[name], name, name+"-extra")
	}
}

func TestLoadAll_FirstErrorWins(t *testing.T) {
	ctx := context.Background()
	repo := New(blobstore.NewMemoryStore())

	_, err := repo.Save(ctx, "present", newFilter(t, "x"))
	require.NoError(t, err)

	_, err = repo.LoadAll(ctx, []string{"present", "absent"})
	require.Error(t, err)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Contains(t, err.Error(), "absent")
}

func TestLoad_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	store := opaqueStore{blobstore.NewMemoryStore()}

	_, err := New(store).Save(ctx, "f", newFilter(t, "x"))
	require.NoError(t, err)

	_, err = New(store, WithMemoryLimit(8)).Load(ctx, "f")
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	limited := New(store, WithMemoryLimit(1<<20))
	_, err = limited.Load(ctx, "f")
	require.NoError(t, err)
	assert.Zero(t, limited.rc.MemoryUsage(), "buffer memory is released after decode")
}

func TestLoad_MemoryLimitCountsDecodedSize(t *testing.T) {
	ctx := context.Background()

	// A wide, nearly empty filter: its block map compresses to a tiny blob
	// but decodes to 64 KiB of words and ranks.
	wide, err := sparsebloom.New(1<<24, 3)
	require.NoError(t, err)
	require.NoError(t, wide.InsertString("x"))

	tests := []struct {
		name  string
		store blobstore.Store
	}{
		{"buffered", opaqueStore{blobstore.NewMemoryStore()}},
		{"resident", blobstore.NewMemoryStore()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.store, WithCompression(codec.CompressionZSTD)).Save(ctx, "wide", wide)
			require.NoError(t, err)

			const limit = 16 << 10
			require.Less(t, m.Bytes, int64(limit/2), "blob fits the limit")

			_, err = New(tt.store, WithMemoryLimit(limit)).Load(ctx, "wide")
			require.ErrorIs(t, err, ErrMemoryLimitExceeded)

			roomy := New(tt.store, WithMemoryLimit(1<<20))
			f, err := roomy.Load(ctx, "wide")
			require.NoError(t, err)
			requireContainsAll(t, f, "x")
			assert.Zero(t, roomy.rc.MemoryUsage())
		})
	}
}

func TestLoad_FilterOptions(t *testing.T) {
	ctx := context.Background()
	repo := New(blobstore.NewMemoryStore())
	_, err := repo.Save(ctx, "f", newFilter(t, "x"))
	require.NoError(t, err)

	mc := &sparsebloom.BasicMetricsCollector{}
	f, err := New(repo.store, WithFilterOptions(sparsebloom.WithMetricsCollector(mc))).Load(ctx, "f")
	require.NoError(t, err)

	_, err = f.ContainsString("x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mc.GetStats().QueryCount)
}

func TestLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := sparsebloom.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := New(blobstore.NewMemoryStore(), WithLogger(logger))

	_, err := repo.Save(ctx, "logged", newFilter(t, "x"))
	require.NoError(t, err)
	_, err = repo.Load(ctx, "missing")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"filter saved"`)
	assert.Contains(t, out, `"msg":"filter load failed"`)
	assert.Contains(t, out, `"component":"repository"`)
	assert.Contains(t, out, `"name":"logged"`)
}
