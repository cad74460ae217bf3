package validation

import (
	"sort"

	"github.com/seoulquant/candlevec/pkg/model"
)

// DedupPolicy selects which candle wins when two share a key
type DedupPolicy int

const (
	// KeepFirst keeps the earliest-seen candle for a duplicate key
	KeepFirst DedupPolicy = iota
	// KeepLast keeps the latest-seen candle, overwriting earlier ones
	KeepLast
)

// DedupResult summarizes a deduplication pass
type DedupResult struct {
	Total      int
	Unique     int
	Duplicates int
}

// DuplicateRate returns the fraction of input candles that were duplicates
func (r DedupResult) DuplicateRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Duplicates) / float64(r.Total)
}

// Deduplicate removes candles sharing the same (stock code, timeframe,
// timestamp) key per the policy. Output is sorted by timestamp, then stock
// code, so results are deterministic regardless of input order.
func Deduplicate(candles []model.Candle, policy DedupPolicy) ([]model.Candle, DedupResult) {
	type key struct {
		code      string
		timeframe string
		ts        int64
	}

	seen := make(map[key]int, len(candles))
	out := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		k := key{c.StockCode, c.Timeframe, c.Timestamp}
		if idx, ok := seen[k]; ok {
			if policy == KeepLast {
				out[idx] = c
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].StockCode < out[j].StockCode
	})

	return out, DedupResult{
		Total:      len(candles),
		Unique:     len(out),
		Duplicates: len(candles) - len(out),
	}
}
