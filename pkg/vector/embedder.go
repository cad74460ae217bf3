package vector

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// Config holds embedder configuration
type Config struct {
	UsePCA      bool // when false, Embed is an identity pass-through
	RawDim      int  // expected raw vector length (window size x feature count)
	NComponents int  // reduced dimension when PCA is enabled
}

// DefaultConfig returns the standard 600 -> 64 reduction
// (60 candles x 10 features, compressed to 64 components).
func DefaultConfig() Config {
	return Config{
		UsePCA:      true,
		RawDim:      600,
		NComponents: 64,
	}
}

// Embedder owns the projection model and the similarity index. It starts
// untrained; Train or LoadModel moves it to the trained state. The model is
// held behind an atomic pointer, so replacing it (a rare, exclusive
// operation) never races with concurrent Embed calls: each call resolves the
// pointer once and uses that snapshot throughout.
type Embedder struct {
	config     Config
	projection atomic.Pointer[Projection] // nil until trained or loaded
	store      Store
}

// NewEmbedder creates an embedder backed by an in-memory index
func NewEmbedder(cfg Config) *Embedder {
	return &Embedder{
		config: cfg,
		store:  NewMemoryIndex(),
	}
}

// NewEmbedderWithStore creates an embedder backed by the given index, e.g.
// the Milvus adapter.
func NewEmbedderWithStore(cfg Config, store Store) *Embedder {
	return &Embedder{
		config: cfg,
		store:  store,
	}
}

// Train fits the PCA projection on the training vectors and transitions the
// embedder to the trained state. Each row must have length RawDim and at
// least NComponents rows are required.
func (e *Embedder) Train(vectors [][]float64) (TrainStats, error) {
	p, stats, err := TrainPCA(vectors, e.config.RawDim, e.config.NComponents)
	if err != nil {
		return TrainStats{}, err
	}
	e.projection.Store(p)
	return stats, nil
}

// SaveModel writes the trained projection to the sink as an opaque blob
func (e *Embedder) SaveModel(w io.Writer) error {
	p := e.projection.Load()
	if p == nil {
		return ErrModelNotTrained
	}
	return p.Save(w)
}

// LoadModel restores a projection from the source and transitions the
// embedder to the trained state. The stored model must match the configured
// raw dimension.
func (e *Embedder) LoadModel(r io.Reader) error {
	p, err := LoadProjection(r)
	if err != nil {
		return err
	}
	if p.RawDim() != e.config.RawDim || p.NComponents() != e.config.NComponents {
		return fmt.Errorf("%w: model is %dx%d, embedder expects %dx%d",
			ErrModelLoad, p.RawDim(), p.NComponents(), e.config.RawDim, e.config.NComponents)
	}
	e.projection.Store(p)
	return nil
}

// Trained reports whether a projection is available
func (e *Embedder) Trained() bool {
	return e.projection.Load() != nil
}

// Embed converts a raw feature vector to its reduced form. With PCA disabled
// it validates and returns a copy of the input unchanged. Deterministic: the
// same model and input always produce identical output.
func (e *Embedder) Embed(raw []float64) ([]float64, error) {
	if len(raw) != e.config.RawDim {
		return nil, fmt.Errorf("%w: raw vector has length %d, want %d",
			ErrDimensionMismatch, len(raw), e.config.RawDim)
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: element %d is %v", ErrDataQuality, i, v)
		}
	}

	if !e.config.UsePCA {
		out := make([]float64, len(raw))
		copy(out, raw)
		return out, nil
	}

	p := e.projection.Load()
	if p == nil {
		return nil, ErrModelNotTrained
	}
	return p.Transform(raw), nil
}

// Insert stores an embedded vector with its window metadata
func (e *Embedder) Insert(ctx context.Context, vec []float64, stockCode string, timestamp int64, windowSize int) error {
	return e.store.Insert(ctx, vec, stockCode, timestamp, windowSize)
}

// Search returns the topK most similar stored vectors
func (e *Embedder) Search(ctx context.Context, query []float64, topK int, minSimilarity float64) ([]QueryResult, error) {
	return e.store.Search(ctx, query, topK, minSimilarity)
}

// Clear removes all stored vectors
func (e *Embedder) Clear(ctx context.Context) error {
	return e.store.Clear(ctx)
}

// Count returns the number of stored vectors
func (e *Embedder) Count(ctx context.Context) (int, error) {
	return e.store.Count(ctx)
}

// Dimension returns the dimension of vectors entering the index:
// NComponents when PCA is enabled, RawDim otherwise.
func (e *Embedder) Dimension() int {
	if e.config.UsePCA {
		return e.config.NComponents
	}
	return e.config.RawDim
}
