package vector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/vector"
)

func TestSearchSelfSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	v := []float64{3, 1, 4, 1, 5}
	require.NoError(t, idx.Insert(ctx, v, "005930", 1000, 60))

	results, err := idx.Search(ctx, v, 1, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 1.0, results[0].Similarity, 1e-12)
}

func TestSearchRanking(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	target := []float64{1, 0, 0, 0}
	near := []float64{0.9, 0.1, 0, 0}
	far := []float64{0, 1, 0, 0}
	opposite := []float64{-1, 0, 0, 0}

	require.NoError(t, idx.Insert(ctx, far, "A", 1, 60))
	require.NoError(t, idx.Insert(ctx, target, "B", 2, 60))
	require.NoError(t, idx.Insert(ctx, opposite, "C", 3, 60))
	require.NoError(t, idx.Insert(ctx, near, "D", 4, 60))

	results, err := idx.Search(ctx, target, 10, -1.0)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, "B", results[0].StockCode)
	require.Equal(t, "D", results[1].StockCode)
	require.Equal(t, "A", results[2].StockCode)
	require.Equal(t, "C", results[3].StockCode)

	// Similarities are non-increasing
	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}
}

func TestSearchMinSimilarityFilter(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	require.NoError(t, idx.Insert(ctx, []float64{1, 0}, "A", 1, 60))
	require.NoError(t, idx.Insert(ctx, []float64{1, 1}, "B", 2, 60))
	require.NoError(t, idx.Insert(ctx, []float64{0, 1}, "C", 3, 60))

	query := []float64{1, 0}

	all, err := idx.Search(ctx, query, 10, 0.0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	strict, err := idx.Search(ctx, query, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, strict, 2)

	// Raising the threshold never adds results
	exact, err := idx.Search(ctx, query, 10, 0.99)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	require.Equal(t, "A", exact[0].StockCode)
}

func TestSearchTopKTruncation(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	for i := 0; i < 10; i++ {
		require.NoError(t, idx.Insert(ctx, []float64{1, float64(i) * 0.1}, "S", int64(i), 60))
	}

	results, err := idx.Search(ctx, []float64{1, 0}, 3, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	none, err := idx.Search(ctx, []float64{1, 0}, 0, 0.0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSearchInsertionOrderTieBreak(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	// Same direction, different magnitude: identical similarity after
	// normalization, so insertion order decides.
	require.NoError(t, idx.Insert(ctx, []float64{2, 0}, "first", 1, 60))
	require.NoError(t, idx.Insert(ctx, []float64{5, 0}, "second", 2, 60))
	require.NoError(t, idx.Insert(ctx, []float64{1, 0}, "third", 3, 60))

	results, err := idx.Search(ctx, []float64{1, 0}, 3, 0.0)
	require.NoError(t, err)
	require.Equal(t, "first", results[0].StockCode)
	require.Equal(t, "second", results[1].StockCode)
	require.Equal(t, "third", results[2].StockCode)
}

func TestSearchZeroVector(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	require.NoError(t, idx.Insert(ctx, []float64{0, 0, 0}, "zero", 1, 60))
	require.NoError(t, idx.Insert(ctx, []float64{1, 0, 0}, "unit", 2, 60))

	// The zero entry scores 0 against any query
	results, err := idx.Search(ctx, []float64{1, 0, 0}, 10, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "unit", results[0].StockCode)
	require.Equal(t, "zero", results[1].StockCode)
	require.Zero(t, results[1].Similarity)

	// A positive threshold hides it
	filtered, err := idx.Search(ctx, []float64{1, 0, 0}, 10, 0.01)
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	// A zero query scores 0 against everything
	zeroQuery, err := idx.Search(ctx, []float64{0, 0, 0}, 10, 0.0)
	require.NoError(t, err)
	require.Len(t, zeroQuery, 2)
	for _, r := range zeroQuery {
		require.Zero(t, r.Similarity)
	}
}

func TestClearAndCount(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Insert(ctx, []float64{1, 2}, "S", int64(i), 60))
	}
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.NoError(t, idx.Clear(ctx))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	results, err := idx.Search(ctx, []float64{1, 2}, 10, 0.0)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchNoisyNeighbors(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewMemoryIndex()

	target := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	// Five noisy variants of the target, five unrelated vectors
	for i := 0; i < 5; i++ {
		noisy := make([]float64, len(target))
		copy(noisy, target)
		noisy[i] += 0.05
		require.NoError(t, idx.Insert(ctx, noisy, "near", int64(i), 60))
	}
	unrelated := [][]float64{
		{-8, 7, -6, 5, -4, 3, -2, 1},
		{0, 0, 0, 0, 0, 0, 0, 1},
		{5, -5, 5, -5, 5, -5, 5, -5},
		{-1, -2, -3, -4, -5, -6, -7, -8},
		{1, 0, -1, 0, 1, 0, -1, 0},
	}
	for i, v := range unrelated {
		require.NoError(t, idx.Insert(ctx, v, "far", int64(100+i), 60))
	}

	results, err := idx.Search(ctx, target, 3, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.Equal(t, "near", r.StockCode)
		require.Greater(t, r.Similarity, 0.99)
	}
}
