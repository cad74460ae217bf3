package vector

import (
	"context"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// IndexedVector is one stored entry: a unit-normalized vector plus the
// metadata needed to locate the source window.
type IndexedVector struct {
	Vector     []float64
	StockCode  string
	Timestamp  int64
	WindowSize int
}

// MemoryIndex is a flat, append-only in-memory similarity index with
// brute-force exact search: every query dots against every stored vector,
// O(count x dim) per search. It lives for the process lifetime; there is no
// persistence and no auxiliary search structure.
//
// Writes are serialized behind an exclusive lock and each entry is appended
// atomically, so readers never observe a torn vector. Searches take a shared
// lock and may run concurrently.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []IndexedVector
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

var _ Store = (*MemoryIndex)(nil)

// Insert normalizes the vector to unit length and appends it. A zero-norm
// vector is stored unchanged; it scores similarity 0 against every query and
// only surfaces when minSimilarity <= 0. Repeated inserts of equivalent
// vectors create distinct entries.
func (idx *MemoryIndex) Insert(ctx context.Context, vec []float64, stockCode string, timestamp int64, windowSize int) error {
	stored := normalize(vec)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = append(idx.entries, IndexedVector{
		Vector:     stored,
		StockCode:  stockCode,
		Timestamp:  timestamp,
		WindowSize: windowSize,
	})
	return nil
}

// Search unit-normalizes the query and ranks all stored entries by dot
// product (cosine similarity, since stored vectors are unit length). Entries
// below minSimilarity are dropped, the rest are sorted descending with ties
// broken by insertion order, and at most topK are returned. topK <= 0 yields
// no results.
func (idx *MemoryIndex) Search(ctx context.Context, query []float64, topK int, minSimilarity float64) ([]QueryResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	q := normalize(query)

	idx.mu.RLock()
	results := make([]QueryResult, 0, len(idx.entries))
	for _, entry := range idx.entries {
		if len(entry.Vector) != len(q) {
			continue // stored under a different dimension, cannot match
		}
		sim := floats.Dot(q, entry.Vector)
		if sim < minSimilarity {
			continue
		}
		results = append(results, QueryResult{
			StockCode:  entry.StockCode,
			Timestamp:  entry.Timestamp,
			WindowSize: entry.WindowSize,
			Similarity: sim,
		})
	}
	idx.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Clear removes all stored vectors
func (idx *MemoryIndex) Clear(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = nil
	return nil
}

// Count returns the number of stored vectors
func (idx *MemoryIndex) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

// normalize returns a unit-length copy of v, or an unchanged copy when the
// Euclidean norm is zero.
func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	norm := floats.Norm(out, 2)
	if norm > 0 {
		floats.Scale(1/norm, out)
	}
	return out
}
