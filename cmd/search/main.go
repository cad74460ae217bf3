package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/seoulquant/candlevec/pkg/feature"
	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/store/duckdb"
	"github.com/seoulquant/candlevec/pkg/store/milvus"
	"github.com/seoulquant/candlevec/pkg/vector"
	"github.com/seoulquant/candlevec/pkg/window"
)

// Config holds search configuration
type Config struct {
	StockCode string
	Timeframe string

	WindowSize int
	Tolerance  time.Duration

	NComponents   int
	ModelPath     string
	TopK          int
	MinSimilarity float64

	DuckDBPath string
	MilvusAddr string
}

func main() {
	cfg := parseFlags()

	log.Printf("Searching patterns similar to the latest %d-candle window of %s (%s)",
		cfg.WindowSize, cfg.StockCode, cfg.Timeframe)

	ctx := context.Background()

	// Initialize DuckDB
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()
	candleRepo := duckdb.NewCandleRepo(duckClient)

	// Fetch the latest candles for the query window
	candles, err := candleRepo.GetLatest(ctx, cfg.StockCode, cfg.Timeframe, cfg.WindowSize)
	if err != nil {
		log.Fatalf("Failed to fetch candles: %v", err)
	}
	if len(candles) < cfg.WindowSize {
		log.Fatalf("Not enough candles: have %d, need %d", len(candles), cfg.WindowSize)
	}

	// Build the query window, enforcing continuity
	extractor, err := window.NewExtractor(window.Config{
		Size:      cfg.WindowSize,
		Stride:    1,
		Interval:  model.TimeframeInterval(cfg.Timeframe),
		Tolerance: cfg.Tolerance,
	})
	if err != nil {
		log.Fatalf("Invalid window config: %v", err)
	}

	windows := extractor.ExtractAll(candles)
	if len(windows) == 0 {
		log.Fatal("Latest candles do not form a continuous window")
	}
	queryWindow := windows[len(windows)-1]
	log.Printf("Query window %s ends at %s", queryWindow.WindowID,
		time.UnixMilli(queryWindow.TEnd).Format(time.RFC3339))

	// Project to the raw feature vector
	engineer := feature.NewEngineer()
	table, err := engineer.Project(queryWindow)
	if err != nil {
		log.Fatalf("Failed to project query window: %v", err)
	}

	// Load the trained model
	embedder := newEmbedder(ctx, cfg, engineer.RawDim(cfg.WindowSize))
	f, err := os.Open(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to open model file: %v", err)
	}
	if err := embedder.LoadModel(f); err != nil {
		f.Close()
		log.Fatalf("Failed to load model: %v", err)
	}
	f.Close()

	embedded, err := embedder.Embed(table.Flatten())
	if err != nil {
		log.Fatalf("Failed to embed query window: %v", err)
	}

	// Search
	results, err := embedder.Search(ctx, embedded, cfg.TopK, cfg.MinSimilarity)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	log.Printf("Found %d similar windows:", len(results))
	for i, r := range results {
		log.Printf("  %d. %s ends %s (similarity %.4f)",
			i+1, r.StockCode, time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04"), r.Similarity)
	}
}

func newEmbedder(ctx context.Context, cfg Config, rawDim int) *vector.Embedder {
	embedCfg := vector.Config{
		UsePCA:      true,
		RawDim:      rawDim,
		NComponents: cfg.NComponents,
	}

	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	if err := milvusClient.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}

	store := milvus.NewVectorStore(milvusClient, milvus.DefaultCollectionName, cfg.Timeframe)
	return vector.NewEmbedderWithStore(embedCfg, store)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.StockCode, "stock", "", "Stock code to query (e.g., 005930)")
	flag.StringVar(&cfg.Timeframe, "timeframe", model.Timeframe10Min, "Timeframe")
	flag.IntVar(&cfg.WindowSize, "window", 60, "Window size (number of candles)")
	flag.DurationVar(&cfg.Tolerance, "tolerance", time.Second, "Window span tolerance")
	flag.IntVar(&cfg.NComponents, "components", 64, "PCA components")
	flag.StringVar(&cfg.ModelPath, "model", "pca.model", "Path to the trained model")
	flag.IntVar(&cfg.TopK, "topk", 10, "Number of results")
	flag.Float64Var(&cfg.MinSimilarity, "min-similarity", 0.0, "Minimum cosine similarity")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "candlevec.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "localhost:19530", "Milvus server address")

	flag.Parse()

	if cfg.StockCode == "" {
		fmt.Println("Usage: search -stock <code> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}
