// Package validation checks candle data quality before it enters the buffer:
// OHLC invariants with a float tolerance, and timestamp deduplication.
package validation

import (
	"errors"
	"fmt"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Epsilon absorbs float rounding from upstream feeds when comparing prices
const Epsilon = 1e-6

// ErrInvalidCandle is returned when a candle violates OHLC invariants
var ErrInvalidCandle = errors.New("invalid candle")

// ValidateCandle checks OHLC invariants: all prices positive, high covers
// open and close, low is under open and close, volume non-negative.
// Comparisons allow Epsilon of slack.
func ValidateCandle(c model.Candle) error {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return fmt.Errorf("%w: non-positive price (o=%g h=%g l=%g c=%g)",
			ErrInvalidCandle, c.Open, c.High, c.Low, c.Close)
	}
	if c.High < c.Open-Epsilon || c.High < c.Close-Epsilon {
		return fmt.Errorf("%w: high %g below open %g or close %g",
			ErrInvalidCandle, c.High, c.Open, c.Close)
	}
	if c.Low > c.Open+Epsilon || c.Low > c.Close+Epsilon {
		return fmt.Errorf("%w: low %g above open %g or close %g",
			ErrInvalidCandle, c.Low, c.Open, c.Close)
	}
	if c.High < c.Low-Epsilon {
		return fmt.Errorf("%w: high %g below low %g", ErrInvalidCandle, c.High, c.Low)
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w: negative volume %d", ErrInvalidCandle, c.Volume)
	}
	return nil
}

// Filter splits candles into valid and invalid sets, preserving order
func Filter(candles []model.Candle) (valid []model.Candle, invalid []model.Candle) {
	for _, c := range candles {
		if ValidateCandle(c) == nil {
			valid = append(valid, c)
		} else {
			invalid = append(invalid, c)
		}
	}
	return valid, invalid
}
