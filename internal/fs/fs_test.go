package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	require.NoError(t, f.Close())

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	renamed := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, renamed))

	require.NoError(t, lfs.Remove(renamed))
	_, err = lfs.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "blob.bin")

	require.NoError(t, WriteFileAtomic(Default, path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(Default, path, []byte("second"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteFileAtomic_Faults(t *testing.T) {
	tests := []struct {
		name  string
		fault Fault
	}{
		{"write", Fault{FailAfterBytes: 2}},
		{"sync", Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			path := filepath.Join(tmp, "blob.bin")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

			ffs := NewFaultyFS(nil)
			ffs.AddRule("blob.bin", tt.fault)

			err := WriteFileAtomic(ffs, path, []byte("new content"), 0o644)
			require.ErrorIs(t, err, ErrInjected)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "old", string(got), "target must be untouched")
			assertNoTempFiles(t, tmp)
		})
	}
}

func TestFaultyFS_CustomError(t *testing.T) {
	boom := errors.New("disk full")
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("data", Fault{FailAfterBytes: 0, Err: boom})

	f, err := ffs.OpenFile(filepath.Join(t.TempDir(), "data"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("x"))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, boom)

	ffs.ClearRules()
	g, err := ffs.OpenFile(filepath.Join(t.TempDir(), "data"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer g.Close()
	_, err = g.Write([]byte("x"))
	assert.NoError(t, err)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), TempSuffix), "leftover %s", e.Name())
	}
}
