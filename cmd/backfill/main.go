package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/seoulquant/candlevec/pkg/collector"
	"github.com/seoulquant/candlevec/pkg/feature"
	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/store/duckdb"
	"github.com/seoulquant/candlevec/pkg/store/milvus"
	"github.com/seoulquant/candlevec/pkg/validation"
	"github.com/seoulquant/candlevec/pkg/vector"
	"github.com/seoulquant/candlevec/pkg/window"
)

// Config holds backfill configuration
type Config struct {
	// Data source
	CSVPath   string
	Timeframe string

	// Window configuration
	WindowSize int
	Stride     int
	Tolerance  time.Duration

	// Embedding
	NComponents int
	ModelPath   string

	// Storage
	DuckDBPath string
	MilvusAddr string // empty runs against the in-memory index
}

func main() {
	cfg := parseFlags()

	log.Printf("Starting backfill for timeframe %s", cfg.Timeframe)
	log.Printf("Window: size=%d, stride=%d, components=%d", cfg.WindowSize, cfg.Stride, cfg.NComponents)

	ctx := context.Background()

	// Initialize DuckDB
	log.Println("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	candleRepo := duckdb.NewCandleRepo(duckClient)

	// Load data
	log.Printf("Loading data from %s...", cfg.CSVPath)
	provider := collector.NewCSVProvider(cfg.CSVPath)
	raw, err := provider.ReadAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load candles: %v", err)
	}
	log.Printf("Loaded %d candles", len(raw))

	// Validate and deduplicate
	valid, invalid := validation.Filter(raw)
	if len(invalid) > 0 {
		log.Printf("Dropped %d invalid candles", len(invalid))
	}
	candles, dedupRes := validation.Deduplicate(valid, validation.KeepLast)
	if dedupRes.Duplicates > 0 {
		log.Printf("Removed %d duplicate candles (%.1f%%)", dedupRes.Duplicates, dedupRes.DuplicateRate()*100)
	}
	for i := range candles {
		if candles[i].Timeframe == "" {
			candles[i].Timeframe = cfg.Timeframe
		}
	}

	// Buffer candles in DuckDB
	log.Println("Buffering candles in DuckDB...")
	if err := candleRepo.InsertBatch(ctx, candles); err != nil {
		log.Fatalf("Failed to insert candles: %v", err)
	}

	// Extract windows per stock
	log.Println("Extracting windows...")
	extractor, err := window.NewExtractor(window.Config{
		Size:      cfg.WindowSize,
		Stride:    cfg.Stride,
		Interval:  model.TimeframeInterval(cfg.Timeframe),
		Tolerance: cfg.Tolerance,
	})
	if err != nil {
		log.Fatalf("Invalid window config: %v", err)
	}

	perStock := extractor.ExtractPerStock(candles)
	var windows []model.Window
	for _, code := range perStock.Codes {
		windows = append(windows, perStock.Windows[code]...)
	}
	log.Printf("Extracted %d windows across %d stocks", len(windows), len(perStock.Codes))
	if len(windows) == 0 {
		log.Fatal("No complete windows extracted, nothing to index")
	}

	// Project windows to raw feature vectors
	log.Println("Computing feature vectors...")
	engineer := feature.NewEngineer()
	rawDim := engineer.RawDim(cfg.WindowSize)

	vectors := make([][]float64, 0, len(windows))
	kept := make([]model.Window, 0, len(windows))
	for _, w := range windows {
		table, err := engineer.Project(w)
		if err != nil {
			log.Printf("Warning: failed to project window %s: %v", w.WindowID, err)
			continue
		}
		vectors = append(vectors, table.Flatten())
		kept = append(kept, w)
	}
	log.Printf("Projected %d windows to %d-dim raw vectors", len(vectors), rawDim)

	// Train PCA
	log.Println("Training PCA model...")
	embedder := newEmbedder(ctx, cfg, rawDim)
	stats, err := embedder.Train(vectors)
	if err != nil {
		log.Fatalf("Failed to train model: %v", err)
	}
	log.Printf("Trained on %d samples, %d components, explained variance %.2f%%",
		stats.NSamples, stats.NComponents, stats.ExplainedVarianceRatio*100)

	// Persist the model
	f, err := os.Create(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to create model file: %v", err)
	}
	if err := embedder.SaveModel(f); err != nil {
		f.Close()
		log.Fatalf("Failed to save model: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close model file: %v", err)
	}
	log.Printf("Model saved to %s", cfg.ModelPath)

	// Embed and index every window
	log.Println("Indexing windows...")
	indexed := 0
	for i, w := range kept {
		embedded, err := embedder.Embed(vectors[i])
		if err != nil {
			log.Printf("Warning: failed to embed window %s: %v", w.WindowID, err)
			continue
		}
		if err := embedder.Insert(ctx, embedded, w.StockCode, w.TEnd, w.Size); err != nil {
			log.Fatalf("Failed to insert vector: %v", err)
		}
		indexed++

		if indexed%1000 == 0 {
			log.Printf("Indexed %d/%d windows", indexed, len(kept))
		}
	}

	count, err := embedder.Count(ctx)
	if err != nil {
		log.Printf("Warning: failed to count indexed vectors: %v", err)
		count = indexed
	}

	log.Println("Backfill completed successfully!")
	log.Printf("Summary: %d candles -> %d windows -> %d vectors", len(candles), len(kept), count)
}

// newEmbedder picks the index backend: Milvus when an address is configured,
// otherwise the in-memory index.
func newEmbedder(ctx context.Context, cfg Config, rawDim int) *vector.Embedder {
	embedCfg := vector.Config{
		UsePCA:      true,
		RawDim:      rawDim,
		NComponents: cfg.NComponents,
	}

	if cfg.MilvusAddr == "" {
		log.Println("Using in-memory vector index")
		return vector.NewEmbedder(embedCfg)
	}

	log.Println("Connecting to Milvus...")
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}

	collectionCfg := milvus.CollectionConfig{
		Name:      milvus.DefaultCollectionName,
		Dimension: cfg.NComponents,
		Shards:    2,
	}
	if err := milvusClient.CreateCollection(ctx, collectionCfg); err != nil {
		log.Fatalf("Failed to create Milvus collection: %v", err)
	}
	if err := milvusClient.CreateIndex(ctx, collectionCfg.Name, "embedding"); err != nil {
		log.Printf("Warning: failed to create index: %v", err)
	}
	if err := milvusClient.LoadCollection(ctx, collectionCfg.Name); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}
	log.Println("Milvus collection ready")

	store := milvus.NewVectorStore(milvusClient, collectionCfg.Name, cfg.Timeframe)
	return vector.NewEmbedderWithStore(embedCfg, store)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.CSVPath, "csv", "", "Path to CSV file with candle data")
	flag.StringVar(&cfg.Timeframe, "timeframe", model.Timeframe10Min, "Timeframe")
	flag.IntVar(&cfg.WindowSize, "window", 60, "Window size (number of candles)")
	flag.IntVar(&cfg.Stride, "stride", 1, "Stride between windows")
	flag.DurationVar(&cfg.Tolerance, "tolerance", time.Second, "Window span tolerance")
	flag.IntVar(&cfg.NComponents, "components", 64, "PCA components")
	flag.StringVar(&cfg.ModelPath, "model", "pca.model", "Path to save the trained model")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "candlevec.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "", "Milvus server address (empty uses in-memory index)")

	flag.Parse()

	if cfg.CSVPath == "" {
		fmt.Println("Usage: backfill -csv <path> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}
