package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/model"
)

func makeCandles(n int) []model.Candle {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{
			StockCode: "005930",
			Timeframe: model.Timeframe10Min,
			Timestamp: start.Add(time.Duration(i) * 10 * time.Minute).UnixMilli(),
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 1000,
		}
	}
	return candles
}

func TestNewWindow(t *testing.T) {
	candles := makeCandles(60)
	w := model.NewWindow("005930", model.Timeframe10Min, candles)

	require.Equal(t, 60, w.Size)
	require.Equal(t, candles[59].Timestamp, w.TEnd)
	require.Equal(t, candles[0].Timestamp, w.TStart())
	require.Equal(t, 590*time.Minute, w.Span())
	require.Equal(t, candles[0], *w.First())
	require.Equal(t, candles[59], *w.Last())
}

func TestGenerateWindowID(t *testing.T) {
	a := model.GenerateWindowID("005930", model.Timeframe10Min, 1700000000000, 60)
	b := model.GenerateWindowID("005930", model.Timeframe10Min, 1700000000000, 60)
	require.Equal(t, a, b)
	require.Len(t, a, 32)

	// Any field change yields a different ID
	require.NotEqual(t, a, model.GenerateWindowID("000660", model.Timeframe10Min, 1700000000000, 60))
	require.NotEqual(t, a, model.GenerateWindowID("005930", model.Timeframe1Min, 1700000000000, 60))
	require.NotEqual(t, a, model.GenerateWindowID("005930", model.Timeframe10Min, 1700000600000, 60))
	require.NotEqual(t, a, model.GenerateWindowID("005930", model.Timeframe10Min, 1700000000000, 30))
}

func TestCandleHelpers(t *testing.T) {
	c := model.Candle{Open: 100, High: 110, Low: 95, Close: 105, Timestamp: 1700000000000}

	require.InDelta(t, 0.05, c.Returns(), 1e-12)
	require.InDelta(t, 0.15, c.Range(), 1e-12)
	require.True(t, c.IsBullish())
	require.False(t, c.IsBearish())
	require.Equal(t, int64(1700000000000), c.Time().UnixMilli())

	require.Equal(t, 10*time.Minute, model.TimeframeInterval(model.Timeframe10Min))
	require.Zero(t, model.TimeframeInterval("weekly"))
}
