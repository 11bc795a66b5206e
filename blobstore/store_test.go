package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	data := []byte("id,cluster\n1,10\n2,10\n")
	require.NoError(t, store.Put(ctx, "splits/train.csv", data))
	require.NoError(t, store.Put(ctx, "splits/valid.csv", []byte("id\n")))

	// Verify file exists on disk
	_, err := os.Stat(filepath.Join(tmpDir, "splits", "train.csv"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, "splits/train.csv")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 7)
	n, err := blob.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, "cluster", string(buf))

	all, err := ReadAll(ctx, store, "splits/train.csv")
	require.NoError(t, err)
	require.Equal(t, data, all)

	names, err := store.List(ctx, "splits/")
	require.NoError(t, err)
	require.Equal(t, []string{"splits/train.csv", "splits/valid.csv"}, names)

	_, err = store.Open(ctx, "missing.csv")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_PutReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "pairs.json", []byte("[]")))
	require.NoError(t, store.Put(ctx, "pairs.json", []byte("[[1,2]]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := ReadAll(ctx, store, "pairs.json")
	require.NoError(t, err)
	assert.Equal(t, "[[1,2]]", string(got))

	_, err = store.Open(ctx, ".")
	assert.Error(t, err)
}

func TestLocalStore_EmptyRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	store := NewLocalStore("")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, filepath.ToSlash(path), []byte("id\n1\n")))
	got, err := ReadAll(ctx, store, filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(got))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("hello")
	require.NoError(t, store.Put(ctx, "b", src))
	require.NoError(t, store.Put(ctx, "a", []byte{}))
	src[0] = 'j' // stored copy is unaffected

	got, err := ReadAll(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	empty, err := ReadAll(ctx, store, "a")
	require.NoError(t, err)
	assert.Empty(t, empty)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = store.Open(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewReader(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("id,name\n1,alpha\n2,beta\n")
	require.NoError(t, store.Put(ctx, "rows.csv", data))

	blob, err := store.Open(ctx, "rows.csv")
	require.NoError(t, err)
	defer blob.Close()

	got, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
