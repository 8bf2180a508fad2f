package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-workspace/internal/vectorstore"
)

func TestUpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New()

	for i := 0; i < 3; i++ {
		err := store.Upsert(ctx, "notes.txt_0", "hello world", map[string]any{"source": "notes.txt"}, []float32{1, 0})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.Len())
}

func TestQueryRanksByCosineDistance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Upsert(ctx, "a", "exact", nil, []float32{1, 0}))
	require.NoError(t, store.Upsert(ctx, "b", "orthogonal", nil, []float32{0, 1}))
	require.NoError(t, store.Upsert(ctx, "c", "close", nil, []float32{0.9, 0.1}))

	records, err := store.Query(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
	assert.Less(t, records[0].Distance, 0.5)
	assert.Less(t, records[0].Distance, records[1].Distance)
}

func TestQueryAppliesFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Upsert(ctx, "email_1", "mail", map[string]any{"source": "gmail"}, []float32{1, 0}))
	require.NoError(t, store.Upsert(ctx, "slack_c_1", "chat", map[string]any{"source": "slack"}, []float32{1, 0}))

	records, err := store.Query(ctx, []float32{1, 0}, 10, vectorstore.NewFilter().Eq("source", "gmail"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "email_1", records[0].ID)
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Upsert(ctx, "a", "one", map[string]any{"source": "x"}, []float32{1}))
	require.NoError(t, store.Upsert(ctx, "b", "two", map[string]any{"source": "y"}, []float32{1}))

	all, err := store.Get(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, []string{"a", "does-not-exist"}))
	assert.Equal(t, 1, store.Len())

	remaining, err := store.Get(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].ID)
}

func TestStoredMetadataIsIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New()

	meta := map[string]any{"source": "notes.txt"}
	require.NoError(t, store.Upsert(ctx, "a", "one", meta, []float32{1}))
	meta["source"] = "mutated"

	records, err := store.Get(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "notes.txt", records[0].Metadata["source"])

	records[0].Metadata["source"] = "also-mutated"
	again, err := store.Get(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", again[0].Metadata["source"])
}
