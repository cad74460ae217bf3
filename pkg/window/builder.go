package window

import (
	"github.com/seoulquant/candlevec/pkg/model"
)

// Builder produces the same windows as Extractor, but incrementally from a
// live candle feed. One builder serves one stock/timeframe pair; the ingest
// worker keeps a builder per subscription.
type Builder struct {
	config    Config
	stockCode string
	timeframe string

	buffer    *RingBuffer
	stepCount int
}

// NewBuilder creates a streaming window builder. The same configuration rules
// apply as for NewExtractor.
func NewBuilder(cfg Config, stockCode, timeframe string) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		config:    cfg,
		stockCode: stockCode,
		timeframe: timeframe,
		buffer:    NewRingBuffer(cfg.Size),
		stepCount: cfg.Stride, // emit as soon as the buffer first fills
	}, nil
}

// Push adds a new candle and returns a window when one is due. A window is
// emitted every Stride candles once the buffer is full, and only when the
// buffered span passes the continuity check; a gap quietly delays the next
// emission until the buffer is contiguous again.
func (b *Builder) Push(c model.Candle) (model.Window, bool) {
	b.buffer.Push(c)
	b.stepCount++

	if !b.buffer.IsFull() || b.stepCount < b.config.Stride {
		return model.Window{}, false
	}

	first := b.buffer.First()
	last := b.buffer.Last()
	span := last.Timestamp - first.Timestamp
	if abs64(span-b.config.ExpectedSpan().Milliseconds()) > b.config.Tolerance.Milliseconds() {
		return model.Window{}, false
	}

	b.stepCount = 0
	return model.NewWindow(b.stockCode, b.timeframe, b.buffer.ToSlice()), true
}

// ProcessCandles pushes a batch of candles and returns all produced windows
func (b *Builder) ProcessCandles(candles []model.Candle) []model.Window {
	var windows []model.Window
	for _, c := range candles {
		if w, ok := b.Push(c); ok {
			windows = append(windows, w)
		}
	}
	return windows
}

// Reset clears the builder state
func (b *Builder) Reset() {
	b.buffer.Clear()
	b.stepCount = b.config.Stride
}

// CurrentSize returns the current number of buffered candles
func (b *Builder) CurrentSize() int {
	return b.buffer.Size()
}
