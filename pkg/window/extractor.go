package window

import (
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Config holds configuration for sliding window extraction
type Config struct {
	Size      int           // Window length (number of candles)
	Stride    int           // Step size between window starts, in candles
	Interval  time.Duration // Expected nominal spacing between consecutive candles
	Tolerance time.Duration // Max allowed drift of the window span from (Size-1)*Interval
}

// DefaultConfig returns a Config for 10-minute candles: 60 candles per window
// (10 hours), stride 1, 1 second continuity tolerance.
func DefaultConfig() Config {
	return Config{
		Size:      60,
		Stride:    1,
		Interval:  10 * time.Minute,
		Tolerance: time.Second,
	}
}

// Validate fails fast on an unusable configuration
func (c Config) Validate() error {
	if c.Size < 1 {
		return ErrInvalidSize
	}
	if c.Stride < 1 {
		return ErrInvalidStride
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.Tolerance < 0 {
		return ErrInvalidTolerance
	}
	return nil
}

// ExpectedSpan returns the timestamp span a continuous window must have
func (c Config) ExpectedSpan() time.Duration {
	return time.Duration(c.Size-1) * c.Interval
}

// Extractor produces fixed-size, time-contiguous windows from a candle
// series. Extraction is deterministic and side-effect free: the same series
// and config always yield the same windows, and the returned sequences can be
// re-iterated from the start.
type Extractor struct {
	config Config
}

// NewExtractor creates an extractor, failing fast on invalid configuration
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{config: cfg}, nil
}

// Config returns the extractor configuration
func (e *Extractor) Config() Config {
	return e.config
}

// Extract returns a lazy, restartable sequence of windows from the series.
//
// The series is copied and stably sorted by timestamp first, so callers may
// pass unsorted data. Candidate slices step by Stride; a candidate is yielded
// only when its span is within Tolerance of (Size-1)*Interval. Discontinuous
// candidates are skipped, not reported: gaps reduce yield, they never fail.
func (e *Extractor) Extract(series []model.Candle) iter.Seq[model.Window] {
	sorted := sortByTimestamp(series)
	size := e.config.Size
	stride := e.config.Stride
	expected := e.config.ExpectedSpan().Milliseconds()
	tolerance := e.config.Tolerance.Milliseconds()

	return func(yield func(model.Window) bool) {
		for i := 0; i+size <= len(sorted); i += stride {
			slice := sorted[i : i+size]
			if len(slice) != size {
				continue // cannot happen given the loop bound, kept as a guard
			}

			span := slice[size-1].Timestamp - slice[0].Timestamp
			if abs64(span-expected) > tolerance {
				continue // discontinuous window, skip
			}

			candles := make([]model.Candle, size)
			copy(candles, slice)
			if !yield(model.NewWindow(slice[0].StockCode, slice[0].Timeframe, candles)) {
				return
			}
		}
	}
}

// ExtractAll materializes every window from the series
func (e *Extractor) ExtractAll(series []model.Candle) []model.Window {
	var windows []model.Window
	for w := range e.Extract(series) {
		windows = append(windows, w)
	}
	return windows
}

// PerStock holds the windows extracted for each stock in a series.
// Codes preserves first-seen stock order from the input series; this order is
// a documented contract, not an accident of map iteration.
type PerStock struct {
	Codes   []string
	Windows map[string][]model.Window
}

// ExtractPerStock partitions the series by stock code and extracts windows
// independently for each stock, so no window ever mixes candles from two
// stocks. Stocks are processed concurrently; stocks yielding zero windows are
// omitted from the result.
func (e *Extractor) ExtractPerStock(series []model.Candle) PerStock {
	codes := make([]string, 0)
	byCode := make(map[string][]model.Candle)
	for _, c := range series {
		if _, ok := byCode[c.StockCode]; !ok {
			codes = append(codes, c.StockCode)
		}
		byCode[c.StockCode] = append(byCode[c.StockCode], c)
	}

	results := make([][]model.Window, len(codes))
	var wg sync.WaitGroup
	for i, code := range codes {
		wg.Add(1)
		go func(i int, candles []model.Candle) {
			defer wg.Done()
			results[i] = e.ExtractAll(candles)
		}(i, byCode[code])
	}
	wg.Wait()

	out := PerStock{Windows: make(map[string][]model.Window)}
	for i, code := range codes {
		if len(results[i]) == 0 {
			continue
		}
		out.Codes = append(out.Codes, code)
		out.Windows[code] = results[i]
	}
	return out
}

// Count returns the number of windows Extract would yield, without
// materializing them. Useful for capacity planning before an indexing run.
func (e *Extractor) Count(series []model.Candle) int {
	n := 0
	for range e.Extract(series) {
		n++
	}
	return n
}

// Stats describes a series without extracting windows from it.
// MaxPossibleWindows ignores continuity and is an upper bound only.
type Stats struct {
	TotalCandles       int
	MaxPossibleWindows int
	Size               int
	Stride             int
}

// Stats returns window statistics for the series
func (e *Extractor) Stats(series []model.Candle) Stats {
	maxWindows := 0
	if len(series) >= e.config.Size {
		maxWindows = (len(series)-e.config.Size)/e.config.Stride + 1
	}
	return Stats{
		TotalCandles:       len(series),
		MaxPossibleWindows: maxWindows,
		Size:               e.config.Size,
		Stride:             e.config.Stride,
	}
}

// sortByTimestamp returns a stably sorted copy of the series
func sortByTimestamp(series []model.Candle) []model.Candle {
	sorted := make([]model.Candle, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
