// Package sample generates synthetic candle series for demos and tests.
package sample

import (
	"math"
	"math/rand"
	"time"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Generator produces random-walk OHLCV candles. The same seed always yields
// the same series, so fixtures stay stable across runs.
type Generator struct {
	rng        *rand.Rand
	volatility float64
}

// NewGenerator creates a generator with the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		volatility: 0.01,
	}
}

// WithVolatility sets the per-candle price volatility (default 0.01)
func (g *Generator) WithVolatility(v float64) *Generator {
	g.volatility = v
	return g
}

// Candles generates count candles starting at start, spaced by interval,
// walking from basePrice. Every candle satisfies the OHLC invariants.
func (g *Generator) Candles(stockCode, timeframe string, start time.Time, interval time.Duration, count int, basePrice float64) []model.Candle {
	candles := make([]model.Candle, 0, count)
	price := basePrice

	for i := 0; i < count; i++ {
		open := price
		drift := g.rng.NormFloat64() * g.volatility * price
		close := open + drift
		if close <= 0 {
			close = open * 0.5
		}

		spread := math.Abs(g.rng.NormFloat64()) * g.volatility * price
		high := math.Max(open, close) + spread
		low := math.Min(open, close) - spread
		if low <= 0 {
			low = math.Min(open, close) * 0.5
		}

		ts := start.Add(time.Duration(i) * interval)
		candles = append(candles, model.Candle{
			StockCode: stockCode,
			Timeframe: timeframe,
			Timestamp: ts.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + g.rng.Int63n(100000),
			CreatedAt: ts.UnixMilli(),
		})
		price = close
	}

	return candles
}

// Trending generates candles whose closes follow a deterministic drift plus
// noise. Positive slope trends up, negative down. Useful for building series
// whose window shapes are known ahead of time.
func (g *Generator) Trending(stockCode, timeframe string, start time.Time, interval time.Duration, count int, basePrice, slope float64) []model.Candle {
	candles := make([]model.Candle, 0, count)

	for i := 0; i < count; i++ {
		mid := basePrice + slope*float64(i)
		noise := g.rng.NormFloat64() * g.volatility * basePrice
		open := mid + noise
		close := mid + slope + g.rng.NormFloat64()*g.volatility*basePrice
		if open <= 0 {
			open = basePrice * 0.1
		}
		if close <= 0 {
			close = basePrice * 0.1
		}

		spread := math.Abs(g.rng.NormFloat64()) * g.volatility * basePrice
		high := math.Max(open, close) + spread
		low := math.Min(open, close) - spread
		if low <= 0 {
			low = math.Min(open, close) * 0.5
		}

		ts := start.Add(time.Duration(i) * interval)
		candles = append(candles, model.Candle{
			StockCode: stockCode,
			Timeframe: timeframe,
			Timestamp: ts.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + g.rng.Int63n(100000),
			CreatedAt: ts.UnixMilli(),
		})
	}

	return candles
}
