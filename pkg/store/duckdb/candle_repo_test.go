package duckdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/sample"
	"github.com/seoulquant/candlevec/pkg/store/duckdb"
)

func newTestRepo(t *testing.T) *duckdb.CandleRepo {
	t.Helper()
	client, err := duckdb.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, duckdb.InitializeSchema(context.Background(), client))
	return duckdb.NewCandleRepo(client)
}

func testCandles(n int) []model.Candle {
	g := sample.NewGenerator(9)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, n, 70000)
}

func TestInsertAndGetByTimeRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	candles := testCandles(20)

	require.NoError(t, repo.InsertBatch(ctx, candles))

	got, err := repo.GetByTimeRange(ctx, "005930", model.Timeframe10Min,
		candles[5].Timestamp, candles[14].Timestamp)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].Timestamp, got[i].Timestamp)
	}
}

func TestInsertUpsertsOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	candles := testCandles(5)

	require.NoError(t, repo.InsertBatch(ctx, candles))

	// Re-insert the same keys with a changed close
	candles[0].Close = 99999
	require.NoError(t, repo.Insert(ctx, &candles[0]))

	count, err := repo.Count(ctx, "005930", model.Timeframe10Min)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	got, err := repo.GetByTimeRange(ctx, "005930", model.Timeframe10Min,
		candles[0].Timestamp, candles[0].Timestamp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 99999.0, got[0].Close)
}

func TestGetLatestChronological(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	candles := testCandles(30)

	require.NoError(t, repo.InsertBatch(ctx, candles))

	got, err := repo.GetLatest(ctx, "005930", model.Timeframe10Min, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	require.Equal(t, candles[20].Timestamp, got[0].Timestamp)
	require.Equal(t, candles[29].Timestamp, got[9].Timestamp)
}

func TestGetAllOrdersByTimestampThenStock(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	g := sample.NewGenerator(10)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	a := g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, 10, 70000)
	b := g.Candles("000660", model.Timeframe10Min, start, 10*time.Minute, 10, 120000)
	require.NoError(t, repo.InsertBatch(ctx, append(a, b...)))

	got, err := repo.GetAll(ctx, model.Timeframe10Min)
	require.NoError(t, err)
	require.Len(t, got, 20)

	// Shared timestamps are ordered by stock code
	require.Equal(t, "000660", got[0].StockCode)
	require.Equal(t, "005930", got[1].StockCode)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.InsertBatch(ctx, testCandles(10)))

	deleted, err := repo.Clear(ctx, model.Timeframe10Min)
	require.NoError(t, err)
	require.Equal(t, int64(10), deleted)

	count, err := repo.Count(ctx, "005930", model.Timeframe10Min)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestClearAllTimeframes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	g := sample.NewGenerator(11)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertBatch(ctx,
		g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, 5, 70000)))
	require.NoError(t, repo.InsertBatch(ctx,
		g.Candles("005930", model.Timeframe1Min, start, time.Minute, 5, 70000)))

	deleted, err := repo.Clear(ctx, "")
	require.NoError(t, err)
	require.Equal(t, int64(10), deleted)
}
