//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/deckray/internal/domain"
	"github.com/cloo-solutions/deckray/internal/testutil"
)

func axisVector(axis int) []float32 {
	vec := make([]float32, domain.EmbeddingDimensions)
	vec[axis] = 1
	return vec
}

func TestRulesRepository_Integration(t *testing.T) {
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo, err := NewRulesRepository(pool, "presentation_rules")
	require.NoError(t, err)

	t.Run("ensure collection is idempotent", func(t *testing.T) {
		require.NoError(t, repo.EnsureCollection(ctx))
		require.NoError(t, repo.EnsureCollection(ctx))
	})

	t.Run("upsert and search", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		id1, id2 := int64(1), int64(2)
		records := []*domain.VectorRecord{
			{ID: &id1, Vector: axisVector(0), Payload: "one idea per slide"},
			{ID: &id2, Vector: axisVector(1), Payload: "limit text per slide"},
		}
		require.NoError(t, repo.Upsert(ctx, records))

		passages, err := repo.Search(ctx, axisVector(0), 5)
		require.NoError(t, err)
		require.Len(t, passages, 2)

		// nearest first, cosine similarity descending
		assert.Equal(t, "one idea per slide", passages[0].Text)
		assert.InDelta(t, 1.0, passages[0].Score, 1e-6)
		assert.Greater(t, passages[0].Score, passages[1].Score)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		id := int64(1)
		require.NoError(t, repo.Upsert(ctx, []*domain.VectorRecord{
			{ID: &id, Vector: axisVector(0), Payload: "original"},
		}))
		require.NoError(t, repo.Upsert(ctx, []*domain.VectorRecord{
			{ID: &id, Vector: axisVector(0), Payload: "replaced"},
		}))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		passages, err := repo.Search(ctx, axisVector(0), 1)
		require.NoError(t, err)
		require.Len(t, passages, 1)
		assert.Equal(t, "replaced", passages[0].Text)
	})

	t.Run("store assigned identity", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		require.NoError(t, repo.Upsert(ctx, []*domain.VectorRecord{
			{Vector: axisVector(2), Payload: "auto id"},
		}))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("search empty collection", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		passages, err := repo.Search(ctx, axisVector(0), 3)
		require.NoError(t, err)
		assert.Empty(t, passages)
	})
}
