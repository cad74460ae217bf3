package collector

import (
	"context"
	"sort"
	"sync"

	"github.com/seoulquant/candlevec/pkg/model"
)

// MemoryProvider serves candles from memory. Used in tests and as a sink
// for pre-generated sample data.
type MemoryProvider struct {
	mu      sync.RWMutex
	candles map[string][]model.Candle // keyed by stockCode|timeframe
}

// NewMemoryProvider creates an empty in-memory provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		candles: make(map[string][]model.Candle),
	}
}

var _ Provider = (*MemoryProvider)(nil)

// Add loads candles into the provider
func (p *MemoryProvider) Add(candles ...model.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range candles {
		key := c.StockCode + "|" + c.Timeframe
		p.candles[key] = append(p.candles[key], c)
	}
}

// FetchCandles returns candles within [start, end] sorted by timestamp
func (p *MemoryProvider) FetchCandles(ctx context.Context, stockCode, timeframe string, start, end int64) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []model.Candle
	for _, c := range p.candles[stockCode+"|"+timeframe] {
		if c.Timestamp >= start && c.Timestamp <= end {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

// FetchLatest returns the most recent limit candles in chronological order
func (p *MemoryProvider) FetchLatest(ctx context.Context, stockCode, timeframe string, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	stored := p.candles[stockCode+"|"+timeframe]
	out := make([]model.Candle, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
