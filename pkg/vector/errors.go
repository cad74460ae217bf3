package vector

import "errors"

// Error kinds for the embedding pipeline. All are reported synchronously to
// the caller at the point of violation; nothing is retried internally.
var (
	// ErrModelNotTrained is returned by Embed when PCA is enabled but no
	// projection has been trained or loaded yet.
	ErrModelNotTrained = errors.New("vector: projection model not trained")

	// ErrModelLoad is returned when a persisted model cannot be read or decoded.
	ErrModelLoad = errors.New("vector: failed to load projection model")

	// ErrDimensionMismatch is returned when a raw vector's length does not
	// match the configured raw dimension.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrDataQuality is returned when a raw vector contains NaN or Inf values.
	ErrDataQuality = errors.New("vector: raw vector contains NaN or Inf")

	// ErrTooFewSamples is returned when training with fewer samples than the
	// requested number of components; the solution would be ill-posed.
	ErrTooFewSamples = errors.New("vector: not enough training samples")

	// ErrInvalidComponents is returned when the requested number of components
	// is not in [1, rawDim].
	ErrInvalidComponents = errors.New("vector: invalid number of components")
)
