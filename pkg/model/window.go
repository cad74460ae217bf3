package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Window is a fixed-length, time-contiguous run of candles for one stock.
// Windows are immutable once produced: the extractor hands every window its
// own candle slice and nothing downstream mutates it.
type Window struct {
	WindowID  string   `json:"window_id"`
	StockCode string   `json:"stock_code"`
	Timeframe string   `json:"timeframe"`
	Size      int      `json:"size"`  // number of candles
	TEnd      int64    `json:"t_end"` // last candle timestamp, Unix milliseconds
	Candles   []Candle `json:"candles"`
}

// GenerateWindowID creates a deterministic window ID based on key parameters.
// Format: hash(stock_code|tf|t_end|size). Same parameters always produce the
// same ID, which keeps downstream writes idempotent.
func GenerateWindowID(stockCode, timeframe string, tEnd int64, size int) string {
	data := fmt.Sprintf("%s|%s|%d|%d", stockCode, timeframe, tEnd, size)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// NewWindow creates a new Window with generated ID
func NewWindow(stockCode, timeframe string, candles []Candle) Window {
	var tEnd int64
	if len(candles) > 0 {
		tEnd = candles[len(candles)-1].Timestamp
	}
	return Window{
		WindowID:  GenerateWindowID(stockCode, timeframe, tEnd, len(candles)),
		StockCode: stockCode,
		Timeframe: timeframe,
		Size:      len(candles),
		TEnd:      tEnd,
		Candles:   candles,
	}
}

// First returns the first candle in the window
func (w *Window) First() *Candle {
	if len(w.Candles) == 0 {
		return nil
	}
	return &w.Candles[0]
}

// Last returns the most recent candle in the window
func (w *Window) Last() *Candle {
	if len(w.Candles) == 0 {
		return nil
	}
	return &w.Candles[len(w.Candles)-1]
}

// Span returns last.Timestamp - first.Timestamp as a duration
func (w *Window) Span() time.Duration {
	if len(w.Candles) < 2 {
		return 0
	}
	return time.Duration(w.Candles[len(w.Candles)-1].Timestamp-w.Candles[0].Timestamp) * time.Millisecond
}

// TStart returns the first candle timestamp in Unix milliseconds
func (w *Window) TStart() int64 {
	if len(w.Candles) == 0 {
		return 0
	}
	return w.Candles[0].Timestamp
}
