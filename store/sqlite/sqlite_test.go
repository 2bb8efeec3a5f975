package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reconciliation-engine/docstore"
	"github.com/warp/reconciliation-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := docstore.Document{
		"ID_CILINDRO": "C1",
		"PRECIO":      150.5,
		"nested":      map[string]any{"k": "v"},
	}
	require.NoError(t, store.Set(ctx, "ventas", "s1", in, false))

	out, err := store.Get(ctx, "ventas", "s1")
	require.NoError(t, err)
	assert.Equal(t, "C1", out["ID_CILINDRO"])
	assert.Equal(t, 150.5, out["PRECIO"])
	assert.Equal(t, map[string]any{"k": "v"}, out["nested"])
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "ventas", "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSetMergePreservesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c", "d1", docstore.Document{"a": "x", "b": "y"}, false))
	require.NoError(t, store.Set(ctx, "c", "d1", docstore.Document{"b": "z"}, true))

	doc, err := store.Get(ctx, "c", "d1")
	require.NoError(t, err)
	assert.Equal(t, "x", doc["a"])
	assert.Equal(t, "z", doc["b"])
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c", "d1", docstore.Document{"a": "x"}, false))
	require.NoError(t, store.Update(ctx, "c", "d1", docstore.Document{"a": "y"}))

	doc, err := store.Get(ctx, "c", "d1")
	require.NoError(t, err)
	assert.Equal(t, "y", doc["a"])

	err = store.Update(ctx, "c", "missing", docstore.Document{"a": "y"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestQueryByFieldInInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "asignacion", "doc-b", docstore.Document{"id_vendedor": "V1", "n": float64(1)}, false))
	require.NoError(t, store.Set(ctx, "asignacion", "doc-a", docstore.Document{"id_vendedor": "V2", "n": float64(2)}, false))
	require.NoError(t, store.Set(ctx, "asignacion", "doc-c", docstore.Document{"id_vendedor": "V1", "n": float64(3)}, false))

	records, err := store.Query(ctx, "asignacion", "id_vendedor", "V1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Insertion order, not key order
	assert.Equal(t, "doc-b", records[0].ID)
	assert.Equal(t, "doc-c", records[1].ID)
}

func TestListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Add(ctx, "ventas", docstore.Document{"n": float64(1)})
	require.NoError(t, err)
	_, err = store.Add(ctx, "ventas", docstore.Document{"n": float64(2)})
	require.NoError(t, err)

	records, err := store.List(ctx, "ventas")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, store.Delete(ctx, "ventas", id1))
	records, err = store.List(ctx, "ventas")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Deleting a missing document is not an error
	assert.NoError(t, store.Delete(ctx, "ventas", "gone"))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c", "d1", docstore.Document{"a": "x"}, false))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s docstore.Store) error {
		if err := s.Update(ctx, "c", "d1", docstore.Document{"a": "y"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := store.Get(ctx, "c", "d1")
	require.NoError(t, err)
	assert.Equal(t, "x", doc["a"], "write must be rolled back")
}

func TestWithTxCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s docstore.Store) error {
		return s.Set(ctx, "c", "d1", docstore.Document{"a": "x"}, false)
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "c", "d1")
	require.NoError(t, err)
	assert.Equal(t, "x", doc["a"])
}
