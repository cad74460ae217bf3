package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seoulquant/candlevec/pkg/model"
)

const upsertCandle = `
	INSERT INTO candles (stock_code, timeframe, timestamp, open, high, low, close, volume, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (stock_code, timeframe, timestamp) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		created_at = EXCLUDED.created_at
`

// CandleRepo buffers candle data before export. Re-collected candles upsert
// over the existing row, so retries stay idempotent.
type CandleRepo struct {
	client *Client
}

// NewCandleRepo creates a new candle repository
func NewCandleRepo(client *Client) *CandleRepo {
	return &CandleRepo{client: client}
}

// Insert inserts a single candle
func (r *CandleRepo) Insert(ctx context.Context, c *model.Candle) error {
	createdAt := c.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}
	return r.client.Exec(ctx, upsertCandle,
		c.StockCode, c.Timeframe, c.Timestamp,
		c.Open, c.High, c.Low, c.Close, c.Volume, createdAt,
	)
}

// InsertBatch inserts multiple candles in a transaction
func (r *CandleRepo) InsertBatch(ctx context.Context, candles []model.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertCandle)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, c := range candles {
		createdAt := c.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		_, err := stmt.ExecContext(ctx,
			c.StockCode, c.Timeframe, c.Timestamp,
			c.Open, c.High, c.Low, c.Close, c.Volume, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	return tx.Commit()
}

// GetByTimeRange retrieves candles within [start, end], ordered by timestamp
func (r *CandleRepo) GetByTimeRange(ctx context.Context, stockCode, timeframe string, start, end int64) ([]model.Candle, error) {
	query := `
		SELECT stock_code, timeframe, timestamp, open, high, low, close, volume, created_at
		FROM candles
		WHERE stock_code = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.client.Query(ctx, query, stockCode, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetAll retrieves every candle for a timeframe, ordered by timestamp then
// stock code. This is the extractor's input for a full indexing run.
func (r *CandleRepo) GetAll(ctx context.Context, timeframe string) ([]model.Candle, error) {
	query := `
		SELECT stock_code, timeframe, timestamp, open, high, low, close, volume, created_at
		FROM candles
		WHERE timeframe = ?
		ORDER BY timestamp ASC, stock_code ASC
	`

	rows, err := r.client.Query(ctx, query, timeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetLatest retrieves the most recent N candles in chronological order
func (r *CandleRepo) GetLatest(ctx context.Context, stockCode, timeframe string, limit int) ([]model.Candle, error) {
	query := `
		SELECT stock_code, timeframe, timestamp, open, high, low, close, volume, created_at
		FROM candles
		WHERE stock_code = ? AND timeframe = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.client.Query(ctx, query, stockCode, timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	candles, err := scanCandles(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// Count returns the number of buffered candles for a stock/timeframe
func (r *CandleRepo) Count(ctx context.Context, stockCode, timeframe string) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx,
		"SELECT COUNT(*) FROM candles WHERE stock_code = ? AND timeframe = ?",
		stockCode, timeframe,
	)
	err := row.Scan(&count)
	return count, err
}

// Clear deletes buffered candles for a timeframe ("" clears everything) and
// returns the number of deleted rows. Called after a successful export.
func (r *CandleRepo) Clear(ctx context.Context, timeframe string) (int64, error) {
	var res int64
	if timeframe == "" {
		row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM candles")
		if err := row.Scan(&res); err != nil {
			return 0, err
		}
		return res, r.client.Exec(ctx, "DELETE FROM candles")
	}

	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM candles WHERE timeframe = ?", timeframe)
	if err := row.Scan(&res); err != nil {
		return 0, err
	}
	return res, r.client.Exec(ctx, "DELETE FROM candles WHERE timeframe = ?", timeframe)
}

func scanCandles(rows *sql.Rows) ([]model.Candle, error) {
	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		err := rows.Scan(
			&c.StockCode, &c.Timeframe, &c.Timestamp,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}
