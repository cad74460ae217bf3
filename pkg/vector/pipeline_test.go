package vector_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/feature"
	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/sample"
	"github.com/seoulquant/candlevec/pkg/vector"
	"github.com/seoulquant/candlevec/pkg/window"
)

// TestPatternRetrievalPipeline runs the full path: candles to windows to
// feature vectors to a trained embedder to a ranked search, and checks that
// a window retrieves itself first at full similarity.
func TestPatternRetrievalPipeline(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	g := sample.NewGenerator(21)
	candles := g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, 200, 70000)

	e, err := window.NewExtractor(window.Config{
		Size:      30,
		Stride:    1,
		Interval:  10 * time.Minute,
		Tolerance: time.Second,
	})
	require.NoError(t, err)
	windows := e.ExtractAll(candles)
	require.Len(t, windows, 171)

	engineer := feature.NewEngineer()
	rawDim := engineer.RawDim(30)

	raws := make([][]float64, len(windows))
	for i, w := range windows {
		table, err := engineer.Project(w)
		require.NoError(t, err)
		raws[i] = table.Flatten()
		require.Len(t, raws[i], rawDim)
	}

	embedder := vector.NewEmbedder(vector.Config{UsePCA: true, RawDim: rawDim, NComponents: 16})
	stats, err := embedder.Train(raws)
	require.NoError(t, err)
	require.Equal(t, len(windows), stats.NSamples)
	require.Greater(t, stats.ExplainedVarianceRatio, 0.5)

	for i, w := range windows {
		embedded, err := embedder.Embed(raws[i])
		require.NoError(t, err)
		require.Len(t, embedded, 16)
		require.NoError(t, embedder.Insert(ctx, embedded, w.StockCode, w.TEnd, w.Size))
	}

	// Query with window 100: it must come back first with similarity ~1
	query, err := embedder.Embed(raws[100])
	require.NoError(t, err)
	results, err := embedder.Search(ctx, query, 5, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.Equal(t, windows[100].TEnd, results[0].Timestamp)
	require.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}
