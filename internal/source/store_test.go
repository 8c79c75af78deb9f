package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "kb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := &Source{
		ID:       "src-1",
		Type:     TypeDocument,
		Name:     "handbook.md",
		FileType: "text/markdown",
		FileSize: 2048,
	}
	require.NoError(t, store.Create(ctx, src))

	got, err := store.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "handbook.md", got.Name)
	assert.Equal(t, StatusProcessing, got.Status, "new sources start as processing")
	assert.Equal(t, int64(2048), got.FileSize)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_StatusTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Source{ID: "ok", Type: TypeURL, Name: "example.com", URL: "https://example.com"}))
	require.NoError(t, store.Create(ctx, &Source{ID: "bad", Type: TypeURL, Name: "broken.com", URL: "https://broken.com"}))

	require.NoError(t, store.SetReady(ctx, "ok", 7))
	require.NoError(t, store.SetError(ctx, "bad", "fetch failed: 404"))

	ok, err := store.Get(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ok.Status)
	assert.Equal(t, 7, ok.ChunkCount)
	assert.Empty(t, ok.ErrorMessage)

	bad, err := store.Get(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, StatusError, bad.Status)
	assert.Equal(t, "fetch failed: 404", bad.ErrorMessage)

	assert.ErrorIs(t, store.SetReady(ctx, "missing", 1), ErrNotFound)
}

func TestStore_ListAndCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Source{ID: "a", Type: TypeDocument, Name: "a.txt"}))
	require.NoError(t, store.Create(ctx, &Source{ID: "b", Type: TypeDocument, Name: "b.txt"}))
	require.NoError(t, store.SetReady(ctx, "a", 3))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 2)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[StatusReady])
	assert.Equal(t, 1, counts[StatusProcessing])
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Source{ID: "a", Type: TypeDocument, Name: "a.txt"}))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)
}
