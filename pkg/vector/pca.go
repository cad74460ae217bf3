package vector

import (
	"encoding/gob"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is a fitted PCA model mapping rawDim-dimensional vectors to
// nComponents-dimensional coordinates. It is created once by TrainPCA (or
// restored by LoadProjection) and frozen afterwards.
type Projection struct {
	rawDim      int
	nComponents int
	mean        []float64   // column means of the training matrix
	components  [][]float64 // nComponents rows, each a rawDim-length principal axis
	explained   float64     // explained variance ratio of the kept components
}

// TrainStats summarizes a completed PCA fit
type TrainStats struct {
	NComponents            int
	ExplainedVarianceRatio float64
	NSamples               int
}

// TrainPCA fits a variance-maximizing linear projection to the training
// vectors: center by the column means, solve for the top nComponents
// principal axes. Every row must have length rawDim, and the fit requires at
// least nComponents samples to be well posed.
func TrainPCA(vectors [][]float64, rawDim, nComponents int) (*Projection, TrainStats, error) {
	if nComponents < 1 || nComponents > rawDim {
		return nil, TrainStats{}, fmt.Errorf("%w: %d components for raw dimension %d",
			ErrInvalidComponents, nComponents, rawDim)
	}
	n := len(vectors)
	if n < nComponents {
		return nil, TrainStats{}, fmt.Errorf("%w: got %d samples, need >= %d",
			ErrTooFewSamples, n, nComponents)
	}

	flat := make([]float64, 0, n*rawDim)
	for i, row := range vectors {
		if len(row) != rawDim {
			return nil, TrainStats{}, fmt.Errorf("%w: training row %d has length %d, want %d",
				ErrDimensionMismatch, i, len(row), rawDim)
		}
		flat = append(flat, row...)
	}
	m := mat.NewDense(n, rawDim, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return nil, TrainStats{}, fmt.Errorf("vector: principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs) // rawDim x min(n, rawDim), axes as columns
	vars := pc.VarsTo(nil)

	components := make([][]float64, nComponents)
	for j := 0; j < nComponents; j++ {
		components[j] = mat.Col(nil, j, &vecs)
	}

	total := floats.Sum(vars)
	explained := 0.0
	if total > 0 {
		explained = floats.Sum(vars[:nComponents]) / total
	}

	mean := make([]float64, rawDim)
	for j := 0; j < rawDim; j++ {
		col := mat.Col(nil, j, m)
		mean[j] = stat.Mean(col, nil)
	}

	p := &Projection{
		rawDim:      rawDim,
		nComponents: nComponents,
		mean:        mean,
		components:  components,
		explained:   explained,
	}
	stats := TrainStats{
		NComponents:            nComponents,
		ExplainedVarianceRatio: explained,
		NSamples:               n,
	}
	return p, stats, nil
}

// Transform projects a raw vector onto the principal axes:
// (raw - mean) . component_j for each kept component. Deterministic: the same
// model and input always produce bit-identical output. The caller is expected
// to have validated length and data quality.
func (p *Projection) Transform(raw []float64) []float64 {
	centered := make([]float64, p.rawDim)
	floats.SubTo(centered, raw, p.mean)

	out := make([]float64, p.nComponents)
	for j, axis := range p.components {
		out[j] = floats.Dot(centered, axis)
	}
	return out
}

// RawDim returns the input dimension of the projection
func (p *Projection) RawDim() int {
	return p.rawDim
}

// NComponents returns the output dimension of the projection
func (p *Projection) NComponents() int {
	return p.nComponents
}

// ExplainedVarianceRatio returns the variance fraction retained by the
// kept components.
func (p *Projection) ExplainedVarianceRatio() float64 {
	return p.explained
}

// projectionBlob is the gob wire form of a Projection. Gob preserves float64
// bit patterns, so save/load round-trips embed identically.
type projectionBlob struct {
	RawDim      int
	NComponents int
	Mean        []float64
	Components  [][]float64
	Explained   float64
}

// Save serializes the projection to an opaque byte blob
func (p *Projection) Save(w io.Writer) error {
	blob := projectionBlob{
		RawDim:      p.rawDim,
		NComponents: p.nComponents,
		Mean:        p.mean,
		Components:  p.components,
		Explained:   p.explained,
	}
	if err := gob.NewEncoder(w).Encode(blob); err != nil {
		return fmt.Errorf("failed to encode projection: %w", err)
	}
	return nil
}

// LoadProjection restores a projection previously written by Save
func LoadProjection(r io.Reader) (*Projection, error) {
	var blob projectionBlob
	if err := gob.NewDecoder(r).Decode(&blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if blob.RawDim < 1 || blob.NComponents < 1 || len(blob.Mean) != blob.RawDim ||
		len(blob.Components) != blob.NComponents {
		return nil, fmt.Errorf("%w: inconsistent model blob", ErrModelLoad)
	}
	for _, axis := range blob.Components {
		if len(axis) != blob.RawDim {
			return nil, fmt.Errorf("%w: inconsistent component length", ErrModelLoad)
		}
	}
	return &Projection{
		rawDim:      blob.RawDim,
		nComponents: blob.NComponents,
		mean:        blob.Mean,
		components:  blob.Components,
		explained:   blob.Explained,
	}, nil
}
