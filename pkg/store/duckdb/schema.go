package duckdb

import (
	"context"
	"fmt"
)

// CreateCandlesTable creates the candle buffer table. The buffer is
// append-heavy during collection; the only index is the primary key.
// Prices must be positive and volume non-negative, matching the candle
// validation invariants.
const CreateCandlesTable = `
CREATE TABLE IF NOT EXISTS candles (
    stock_code VARCHAR NOT NULL,
    timeframe VARCHAR NOT NULL,
    timestamp BIGINT NOT NULL,
    open DOUBLE NOT NULL CHECK (open > 0),
    high DOUBLE NOT NULL CHECK (high > 0),
    low DOUBLE NOT NULL CHECK (low > 0),
    close DOUBLE NOT NULL CHECK (close > 0),
    volume BIGINT NOT NULL CHECK (volume >= 0),
    created_at BIGINT NOT NULL,
    PRIMARY KEY (stock_code, timeframe, timestamp)
);
`

// InitializeSchema creates all required tables
func InitializeSchema(ctx context.Context, c *Client) error {
	if err := c.Exec(ctx, CreateCandlesTable); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(ctx context.Context, c *Client) error {
	if err := c.Exec(ctx, "DROP TABLE IF EXISTS candles"); err != nil {
		return fmt.Errorf("failed to drop candles table: %w", err)
	}
	return nil
}
