package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behavior every Store implementation shares.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutOpenRead", func(t *testing.T) {
		data := []byte("hello world, this is a test blob")
		require.NoError(t, store.Put(ctx, "data-001.bin", data))

		blob, err := store.Open(ctx, "data-001.bin")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(len(data)), blob.Size())

		buf := make([]byte, 5)
		n, err := blob.ReadAt(buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(buf))

		all, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, data, all)
	})

	t.Run("ReadPastEnd", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "short.bin", []byte("abc")))
		blob, err := store.Open(ctx, "short.bin")
		require.NoError(t, err)
		defer blob.Close()

		buf := make([]byte, 4)
		n, err := blob.ReadAt(buf, 1)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)

		_, err = blob.ReadAt(buf, 10)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "over.bin", []byte("first")))
		require.NoError(t, store.Put(ctx, "over.bin", []byte("second")))

		blob, err := store.Open(ctx, "over.bin")
		require.NoError(t, err)
		defer blob.Close()
		got, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("PutCopiesInput", func(t *testing.T) {
		data := []byte("mutable")
		require.NoError(t, store.Put(ctx, "copy.bin", data))
		data[0] = 'X'

		blob, err := store.Open(ctx, "copy.bin")
		require.NoError(t, err)
		defer blob.Close()
		got, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, "mutable", string(got))
	})

	t.Run("Empty", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "empty.bin", nil))
		blob, err := store.Open(ctx, "empty.bin")
		require.NoError(t, err)
		defer blob.Close()
		assert.Equal(t, int64(0), blob.Size())
		got, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.bin")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		for _, name := range []string{"filters/b.sbf", "filters/a.sbf", "filters/a.json", "other/c.sbf"} {
			require.NoError(t, store.Put(ctx, name, []byte(name)))
		}

		names, err := store.List(ctx, "filters/")
		require.NoError(t, err)
		assert.Equal(t, []string{"filters/a.json", "filters/a.sbf", "filters/b.sbf"}, names)

		names, err = store.List(ctx, "filters/a")
		require.NoError(t, err)
		assert.Equal(t, []string{"filters/a.json", "filters/a.sbf"}, names)

		require.NoError(t, store.Delete(ctx, "filters/a.sbf"))
		require.NoError(t, store.Delete(ctx, "filters/a.sbf"), "delete is idempotent")

		_, err = store.Open(ctx, "filters/a.sbf")
		assert.ErrorIs(t, err, ErrNotFound)

		names, err = store.List(ctx, "filters/")
		require.NoError(t, err)
		assert.Equal(t, []string{"filters/a.json", "filters/b.sbf"}, names)
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_BlobsAreMappable(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "x", []byte("payload")))

	blob, err := store.Open(context.Background(), "x")
	require.NoError(t, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
}

func TestMemoryStore_InvalidName(t *testing.T) {
	assert.ErrorIs(t, NewMemoryStore().Put(context.Background(), "", []byte("x")), ErrInvalidName)
}
