package collector

import (
	"context"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Provider fetches candle data from an upstream source. Implementations
// return candles in no particular order; callers sort before windowing.
type Provider interface {
	// FetchCandles retrieves candles for a stock within [start, end]
	// (millisecond epoch bounds, inclusive).
	FetchCandles(ctx context.Context, stockCode, timeframe string, start, end int64) ([]model.Candle, error)

	// FetchLatest retrieves the most recent limit candles for a stock.
	FetchLatest(ctx context.Context, stockCode, timeframe string, limit int) ([]model.Candle, error)
}
