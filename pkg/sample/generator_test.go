package sample_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/sample"
	"github.com/seoulquant/candlevec/pkg/validation"
)

var genStart = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestCandlesSatisfyInvariants(t *testing.T) {
	g := sample.NewGenerator(1)
	candles := g.Candles("005930", model.Timeframe10Min, genStart, 10*time.Minute, 500, 70000)

	require.Len(t, candles, 500)
	for i, c := range candles {
		require.NoError(t, validation.ValidateCandle(c), "candle %d", i)
	}
}

func TestCandlesAreContiguous(t *testing.T) {
	g := sample.NewGenerator(2)
	candles := g.Candles("005930", model.Timeframe10Min, genStart, 10*time.Minute, 100, 70000)

	interval := (10 * time.Minute).Milliseconds()
	for i := 1; i < len(candles); i++ {
		require.Equal(t, candles[i-1].Timestamp+interval, candles[i].Timestamp)
	}

	// The walk is continuous: each candle opens at the previous close
	for i := 1; i < len(candles); i++ {
		require.Equal(t, candles[i-1].Close, candles[i].Open)
	}
}

func TestSameSeedSameSeries(t *testing.T) {
	a := sample.NewGenerator(42).Candles("005930", model.Timeframe10Min, genStart, 10*time.Minute, 50, 70000)
	b := sample.NewGenerator(42).Candles("005930", model.Timeframe10Min, genStart, 10*time.Minute, 50, 70000)
	require.Equal(t, a, b)

	c := sample.NewGenerator(43).Candles("005930", model.Timeframe10Min, genStart, 10*time.Minute, 50, 70000)
	require.NotEqual(t, a, c)
}

func TestTrendingSatisfiesInvariants(t *testing.T) {
	g := sample.NewGenerator(3)
	up := g.Trending("005930", model.Timeframe10Min, genStart, 10*time.Minute, 100, 70000, 50)

	for i, c := range up {
		require.NoError(t, validation.ValidateCandle(c), "candle %d", i)
	}

	// The drift dominates the noise over the full series
	require.Greater(t, up[99].Close, up[0].Close)
}
