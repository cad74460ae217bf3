package milvus

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for window embeddings
	DefaultCollectionName = "pattern_windows"
)

// CollectionConfig holds configuration for creating a collection
type CollectionConfig struct {
	Name      string
	Dimension int // Embedded vector dimension (e.g., 64)
	Shards    int // Number of shards
}

// DefaultCollectionConfig returns default collection configuration
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Name:      DefaultCollectionName,
		Dimension: 64,
		Shards:    2,
	}
}

// CreateCollection creates the pattern_windows collection
func (c *Client) CreateCollection(ctx context.Context, cfg CollectionConfig) error {
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: cfg.Name,
		Description:    "Candle window embeddings for pattern similarity search",
		Fields: []*entity.Field{
			{
				Name:       "window_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(cfg.Dimension),
				},
			},
			{
				Name:     "stock_code",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "16",
				},
			},
			{
				Name:     "t_end",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "window_size",
				DataType: entity.FieldTypeInt32,
			},
		},
	}

	if err := c.conn.CreateCollection(ctx, schema, int32(cfg.Shards)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// VectorStore adapts a Milvus collection to the vector.Store contract, so
// the embedder can swap the in-memory index for an external engine without
// interface changes. Entries are keyed by the deterministic window ID, so
// re-indexing the same window is an upsert rather than a duplicate, unlike
// MemoryIndex which never deduplicates.
type VectorStore struct {
	client     *Client
	collection string
	timeframe  string // folded into the window ID; one store serves one timeframe
}

// NewVectorStore creates a store over an existing collection
func NewVectorStore(client *Client, collection, timeframe string) *VectorStore {
	return &VectorStore{client: client, collection: collection, timeframe: timeframe}
}

var _ vector.Store = (*VectorStore)(nil)

// Insert unit-normalizes the vector and upserts it with its metadata
func (s *VectorStore) Insert(ctx context.Context, vec []float64, stockCode string, timestamp int64, windowSize int) error {
	normalized := normalizeToFloat32(vec)
	windowID := model.GenerateWindowID(stockCode, s.timeframe, timestamp, windowSize)

	columns := []entity.Column{
		entity.NewColumnVarChar("window_id", []string{windowID}),
		entity.NewColumnFloatVector("embedding", len(normalized), [][]float32{normalized}),
		entity.NewColumnVarChar("stock_code", []string{stockCode}),
		entity.NewColumnInt64("t_end", []int64{timestamp}),
		entity.NewColumnInt32("window_size", []int32{int32(windowSize)}),
	}

	if _, err := s.client.conn.Upsert(ctx, s.collection, "", columns...); err != nil {
		return fmt.Errorf("failed to insert vector: %w", err)
	}
	return nil
}

// Search runs a cosine top-k query and filters by minSimilarity client-side
// (Milvus COSINE scores are cosine similarities).
func (s *VectorStore) Search(ctx context.Context, query []float64, topK int, minSimilarity float64) ([]vector.QueryResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(16) // nprobe
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(normalizeToFloat32(query))}
	outputFields := []string{"stock_code", "t_end", "window_size"}

	results, err := s.client.conn.Search(
		ctx,
		s.collection,
		nil, // partitions
		"",  // expression filter
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	res := results[0]
	out := make([]vector.QueryResult, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		sim := float64(res.Scores[i])
		if sim < minSimilarity {
			continue
		}

		qr := vector.QueryResult{Similarity: sim}
		for _, field := range res.Fields {
			switch field.Name() {
			case "stock_code":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					qr.StockCode = val
				}
			case "t_end":
				if col, ok := field.(*entity.ColumnInt64); ok {
					val, _ := col.ValueByIdx(i)
					qr.Timestamp = val
				}
			case "window_size":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					qr.WindowSize = int(val)
				}
			}
		}
		out = append(out, qr)
	}

	return out, nil
}

// Clear drops every entry in the collection
func (s *VectorStore) Clear(ctx context.Context) error {
	if err := s.client.conn.Delete(ctx, s.collection, "", "t_end >= 0"); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	stats, err := s.client.conn.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count: %w", err)
	}
	return n, nil
}

// normalizeToFloat32 unit-normalizes and converts for the Milvus wire format
func normalizeToFloat32(v []float64) []float32 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	out := make([]float32, len(v))
	if norm == 0 {
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	}
	scale := 1 / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(x * scale)
	}
	return out
}
