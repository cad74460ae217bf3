package vector

import "context"

// QueryResult is a single similarity search match, ranked descending by
// similarity. Similarity is cosine similarity in [-1, 1].
type QueryResult struct {
	StockCode  string  `json:"stock_code"`
	Timestamp  int64   `json:"timestamp"` // window end, Unix milliseconds
	WindowSize int     `json:"window_size"`
	Similarity float64 `json:"similarity"`
}

// Store is the similarity index boundary. The in-memory MemoryIndex is the
// reference implementation; the Milvus adapter in pkg/store/milvus implements
// the same contract, so swapping to an external engine needs no interface
// change.
type Store interface {
	// Insert unit-normalizes the vector (zero-norm vectors are stored as-is)
	// and appends it with its metadata. Duplicates are not detected.
	Insert(ctx context.Context, vec []float64, stockCode string, timestamp int64, windowSize int) error

	// Search returns up to topK entries with cosine similarity >= minSimilarity
	// against the unit-normalized query, ranked descending by similarity.
	Search(ctx context.Context, query []float64, topK int, minSimilarity float64) ([]QueryResult, error)

	// Clear removes every stored vector.
	Clear(ctx context.Context) error

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)
}
