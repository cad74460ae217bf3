package duckdb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/sample"
	"github.com/seoulquant/candlevec/pkg/store/duckdb"
)

func TestExportYearPartitioned(t *testing.T) {
	ctx := context.Background()
	client, err := duckdb.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, duckdb.InitializeSchema(ctx, client))
	repo := duckdb.NewCandleRepo(client)

	// Candles straddling a year boundary
	g := sample.NewGenerator(12)
	start := time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC)
	candles := g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, 24, 70000)
	require.NoError(t, repo.InsertBatch(ctx, candles))

	dir := t.TempDir()
	exporter := duckdb.NewExporter(client, dir)

	paths, err := exporter.Export(ctx, model.Timeframe10Min)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Equal(t, filepath.Join(dir, "year=2023", "10min.parquet"), paths[2023])
	require.Equal(t, filepath.Join(dir, "year=2024", "10min.parquet"), paths[2024])

	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Positive(t, info.Size())
	}
}

func TestExportEmptyTimeframe(t *testing.T) {
	ctx := context.Background()
	client, err := duckdb.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, duckdb.InitializeSchema(ctx, client))

	exporter := duckdb.NewExporter(client, t.TempDir())
	paths, err := exporter.Export(ctx, model.TimeframeDaily)
	require.NoError(t, err)
	require.Empty(t, paths)
}
