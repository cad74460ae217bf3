package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/queue/nats"
	"github.com/seoulquant/candlevec/pkg/store/duckdb"
	"github.com/seoulquant/candlevec/pkg/store/milvus"
	"github.com/seoulquant/candlevec/pkg/validation"
)

// Config holds writer worker configuration
type Config struct {
	NATSUrl    string
	DuckDBPath string
	MilvusAddr string // empty disables the vector-write consumer
	Timeframe  string
}

func main() {
	cfg := parseFlags()

	log.Println("Starting Writer Worker...")
	log.Printf("NATS: %s, DuckDB: %s", cfg.NATSUrl, cfg.DuckDBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	log.Println("DuckDB schema initialized")

	candleRepo := duckdb.NewCandleRepo(duckClient)

	// Initialize NATS
	log.Println("Connecting to NATS...")
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATSUrl
	natsClient, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	if err := natsClient.CreateStream(ctx, nats.Subjects()); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}
	log.Println("NATS stream ready")

	// Subscribe to candle writes
	candleConsumer, err := natsClient.Subscribe(ctx, nats.SubjectCandleWrite, "candle-writer", func(msg jetstream.Msg) error {
		batch, err := nats.DecodeCandleBatch(msg.Data())
		if err != nil {
			log.Printf("Failed to decode candle batch: %v", err)
			return err
		}

		if len(batch.Candles) == 0 {
			return nil
		}

		valid, invalid := validation.Filter(batch.Candles)
		if len(invalid) > 0 {
			log.Printf("Dropped %d invalid candles", len(invalid))
		}
		if len(valid) == 0 {
			return nil
		}

		deduped, res := validation.Deduplicate(valid, validation.KeepLast)
		if res.Duplicates > 0 {
			log.Printf("Removed %d duplicate candles (%.1f%%)", res.Duplicates, res.DuplicateRate()*100)
		}

		if err := candleRepo.InsertBatch(ctx, deduped); err != nil {
			log.Printf("Failed to insert candles: %v", err)
			return err
		}

		log.Printf("Inserted %d candles", len(deduped))
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to candle writes: %v", err)
	}
	defer candleConsumer.Stop()

	// Subscribe to vector writes when a Milvus backend is configured
	if cfg.MilvusAddr != "" {
		log.Println("Connecting to Milvus...")
		milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusClient.Close()

		store := milvus.NewVectorStore(milvusClient, milvus.DefaultCollectionName, cfg.Timeframe)
		vectorConsumer, err := natsClient.Subscribe(ctx, nats.SubjectVectorWrite, "vector-writer", func(msg jetstream.Msg) error {
			vw, err := nats.DecodeVectorWrite(msg.Data())
			if err != nil {
				log.Printf("Failed to decode vector write: %v", err)
				return err
			}

			if err := store.Insert(ctx, vw.Vector, vw.StockCode, vw.Timestamp, vw.WindowSize); err != nil {
				log.Printf("Failed to insert vector: %v", err)
				return err
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to subscribe to vector writes: %v", err)
		}
		defer vectorConsumer.Stop()
	}

	log.Println("Writer Worker started, waiting for messages...")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down Writer Worker...")
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.NATSUrl, "nats", "nats://localhost:4222", "NATS server URL")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "candlevec.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "", "Milvus server address (empty disables vector writes)")
	flag.StringVar(&cfg.Timeframe, "timeframe", model.Timeframe10Min, "Timeframe for indexed vectors")

	flag.Parse()

	if cfg.DuckDBPath == "" {
		fmt.Println("Usage: writer [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}
