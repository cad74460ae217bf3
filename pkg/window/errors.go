package window

import "errors"

// Configuration errors reported by Config.Validate. Data-quality gaps in the
// candle series are never errors: discontinuous windows are silently filtered
// and only visible through Count/Stats.
var (
	ErrInvalidSize      = errors.New("window: size must be >= 1")
	ErrInvalidStride    = errors.New("window: stride must be >= 1")
	ErrInvalidInterval  = errors.New("window: interval must be positive")
	ErrInvalidTolerance = errors.New("window: tolerance must be non-negative")
)
