package feature

// zscoreEpsilon keeps the z-score denominator away from zero on flat columns
const zscoreEpsilon = 1e-8

// zscore normalizes values to (x - mean) / (std + epsilon). Z-score keeps the
// distribution shape and handles financial outliers better than min-max.
func zscore(values []float64) []float64 {
	mean, std := meanStd(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / (std + zscoreEpsilon)
	}
	return out
}
