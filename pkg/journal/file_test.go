package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	ctx := context.Background()

	j := New(NewFileRepository(path, testLogger()), testLogger())
	require.NoError(t, j.Record(ctx, record("AAPL")))
	require.NoError(t, j.Record(ctx, record("MSFT")))

	// A fresh repository over the same path sees the same store.
	again := New(NewFileRepository(path, testLogger()), testLogger())
	recs, err := again.History(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "MSFT", recs[0].Symbol)
	assert.Equal(t, "AAPL", recs[1].Symbol)
}

func TestFileRepositoryMissingStoreIsEmpty(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	recs, err := repo.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFileRepositoryCorruptStoreIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{definitely not json"), 0o644))
	ctx := context.Background()

	repo := NewFileRepository(path, testLogger())
	recs, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// A corrupt store never blocks new writes.
	require.NoError(t, repo.Append(ctx, models.OrderRecord{ID: "r1", Symbol: "IBM"}))
	recs, err = repo.Read(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "IBM", recs[0].Symbol)
}

func TestFileRepositoryCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "history.json")
	repo := NewFileRepository(path, testLogger())

	require.NoError(t, repo.Append(context.Background(), models.OrderRecord{ID: "r1", Symbol: "AAPL"}))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileRepositoryPruneKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	repo := NewFileRepository(path, testLogger())
	ctx := context.Background()

	for _, symbol := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, repo.Append(ctx, models.OrderRecord{ID: symbol, Symbol: symbol}))
	}
	require.NoError(t, repo.Prune(ctx, 3))

	recs, err := repo.Read(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "E", recs[0].Symbol)
	assert.Equal(t, "C", recs[2].Symbol)
}

func TestMemoryRepositoryPrependsAndPrunes(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, symbol := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Append(ctx, models.OrderRecord{ID: symbol, Symbol: symbol}))
	}

	recs, err := repo.Read(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "C", recs[0].Symbol)

	require.NoError(t, repo.Prune(ctx, 2))
	recs, err = repo.Read(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"C", "B"}, []string{recs[0].Symbol, recs[1].Symbol})

	require.NoError(t, repo.Clear(ctx))
	recs, err = repo.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
