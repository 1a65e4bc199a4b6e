package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/unisearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	store, err := OpenMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(query string, createdAt time.Time) core.HistoryRecord {
	return core.HistoryRecord{
		Id:          core.IDFromContent(query),
		Query:       query,
		Backends:    []string{"slack", "github"},
		Elapsed:     3 * time.Second,
		SourceCount: 2,
		CreatedAt:   createdAt,
	}
}

func TestStoreAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, store.Append(ctx, record("first", base)))
	require.NoError(t, store.Append(ctx, record("second", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, record("third", base.Add(2*time.Minute))))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// Most recent first.
	assert.Equal(t, "third", recent[0].Query)
	assert.Equal(t, "second", recent[1].Query)
	assert.Equal(t, "first", recent[2].Query)

	assert.Equal(t, []string{"slack", "github"}, recent[0].Backends)
	assert.Equal(t, 3*time.Second, recent[0].Elapsed)
	assert.Equal(t, 2, recent[0].SourceCount)
}

func TestStoreRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		q := record("query", base.Add(time.Duration(i)*time.Minute))
		q.Id = core.ID(i + 1)
		require.NoError(t, store.Append(ctx, q))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestStoreRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestStoreRecentInvalidLimit(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Recent(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLimit))
}

func TestStoreAppendValidates(t *testing.T) {
	store := openTestStore(t)

	err := store.Append(context.Background(), core.HistoryRecord{CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidHistoryRecord))
}

func TestStoreSameTimestampDistinctIds(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Add(-time.Minute)

	a := record("same moment a", at)
	b := record("same moment b", at)
	require.NoError(t, store.Append(ctx, a))
	require.NoError(t, store.Append(ctx, b))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
