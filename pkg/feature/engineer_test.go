package feature_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/feature"
	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/sample"
)

func testWindow(t *testing.T, size int) model.Window {
	t.Helper()
	g := sample.NewGenerator(7)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	candles := g.Candles("005930", model.Timeframe10Min, start, 10*time.Minute, size, 70000)
	return model.NewWindow("005930", model.Timeframe10Min, candles)
}

func TestProjectShape(t *testing.T) {
	e := feature.NewEngineer()
	w := testWindow(t, 60)

	table, err := e.Project(w)
	require.NoError(t, err)
	require.Len(t, table.Rows, 60)
	require.Len(t, table.Columns, feature.NumFeatures)
	for _, row := range table.Rows {
		require.Len(t, row, feature.NumFeatures)
	}
}

func TestProjectNoNaN(t *testing.T) {
	e := feature.NewEngineer()

	// Small windows stress the warm-up-free indicator paths
	for _, size := range []int{1, 2, 5, 14, 26, 60} {
		w := testWindow(t, size)
		table, err := e.Project(w)
		require.NoError(t, err)
		for _, row := range table.Rows {
			for _, v := range row {
				require.False(t, math.IsNaN(v))
				require.False(t, math.IsInf(v, 0))
			}
		}
	}
}

func TestProjectConstantPrices(t *testing.T) {
	e := feature.NewEngineer()

	// Flat series: zero variance must not produce NaN
	candles := make([]model.Candle, 30)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	for i := range candles {
		ts := start.Add(time.Duration(i) * 10 * time.Minute).UnixMilli()
		candles[i] = model.Candle{
			StockCode: "005930", Timeframe: model.Timeframe10Min, Timestamp: ts,
			Open: 100, High: 100, Low: 100, Close: 100, Volume: 500,
		}
	}
	w := model.NewWindow("005930", model.Timeframe10Min, candles)

	table, err := e.Project(w)
	require.NoError(t, err)
	for _, row := range table.Rows {
		for _, v := range row {
			require.False(t, math.IsNaN(v))
		}
	}
}

func TestProjectEmptyWindow(t *testing.T) {
	e := feature.NewEngineer()
	_, err := e.Project(model.Window{})
	require.Error(t, err)
}

func TestFlattenRowMajor(t *testing.T) {
	e := feature.NewEngineer()
	w := testWindow(t, 60)

	table, err := e.Project(w)
	require.NoError(t, err)

	flat := table.Flatten()
	require.Len(t, flat, e.RawDim(60))

	// Row-major: element (i, j) lands at i*F + j
	for i, row := range table.Rows {
		for j, v := range row {
			require.Equal(t, v, flat[i*feature.NumFeatures+j])
		}
	}
}

func TestProjectDeterministic(t *testing.T) {
	e := feature.NewEngineer()
	w := testWindow(t, 60)

	first, err := e.Project(w)
	require.NoError(t, err)
	second, err := e.Project(w)
	require.NoError(t, err)
	require.Equal(t, first.Rows, second.Rows)
	require.Equal(t, first.Flatten(), second.Flatten())
}

func TestColumnsOrder(t *testing.T) {
	e := feature.NewEngineer()
	require.Equal(t, []string{
		"open_norm", "high_norm", "low_norm", "close_norm", "volume_norm",
		"rsi", "macd", "bb_upper", "sma_20", "ema_12",
	}, e.Columns())
	require.Equal(t, 600, e.RawDim(60))
}

func TestRSIBounds(t *testing.T) {
	e := feature.NewEngineer()
	w := testWindow(t, 60)

	table, err := e.Project(w)
	require.NoError(t, err)

	// RSI column stays within [0, 100]
	for _, row := range table.Rows {
		rsi := row[5]
		require.GreaterOrEqual(t, rsi, 0.0)
		require.LessOrEqual(t, rsi, 100.0)
	}
}
