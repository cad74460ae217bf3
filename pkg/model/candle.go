package model

import "time"

// Candle represents a single K-line (candlestick) data point for one stock.
// Timestamp is the candle open time in milliseconds since epoch; candle
// ordering throughout the pipeline is by Timestamp ascending.
type Candle struct {
	StockCode string  `json:"stock_code"` // 6-digit stock code (e.g., "005930")
	Timeframe string  `json:"timeframe"`  // "1min", "10min", "daily", ...
	Timestamp int64   `json:"timestamp"`  // open time, Unix milliseconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	CreatedAt int64   `json:"created_at,omitempty"` // collection time, Unix milliseconds
}

// Time converts the candle timestamp to time.Time
func (c *Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Returns calculates the percentage return of this candle
func (c *Candle) Returns() float64 {
	if c.Open == 0 {
		return 0
	}
	return (c.Close - c.Open) / c.Open
}

// Range calculates the high-low range as a percentage of open
func (c *Candle) Range() float64 {
	if c.Open == 0 {
		return 0
	}
	return (c.High - c.Low) / c.Open
}

// IsBullish returns true if close > open
func (c *Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish returns true if close < open
func (c *Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Timeframe constants used across the pipeline
const (
	Timeframe1Min  = "1min"
	Timeframe5Min  = "5min"
	Timeframe10Min = "10min"
	Timeframe60Min = "60min"
	TimeframeDaily = "daily"
)

// TimeframeInterval returns the nominal candle spacing for a timeframe string.
// Unknown timeframes return 0.
func TimeframeInterval(timeframe string) time.Duration {
	switch timeframe {
	case Timeframe1Min:
		return time.Minute
	case Timeframe5Min:
		return 5 * time.Minute
	case Timeframe10Min:
		return 10 * time.Minute
	case Timeframe60Min:
		return time.Hour
	case TimeframeDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}
