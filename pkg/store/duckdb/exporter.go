package duckdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Exporter writes buffered candles out to year-partitioned Parquet files for
// long-term storage: <base>/year=2024/10min.parquet. Snappy compression is
// the default balance of speed and size. DuckDB does the heavy lifting via
// COPY, so candles never pass through Go on the way out.
type Exporter struct {
	client   *Client
	basePath string
}

// NewExporter creates an exporter rooted at basePath
func NewExporter(client *Client, basePath string) *Exporter {
	return &Exporter{client: client, basePath: basePath}
}

// Export writes all buffered candles for a timeframe to Parquet, one file
// per calendar year, and returns the paths keyed by year. Existing files for
// the same year/timeframe are overwritten.
func (e *Exporter) Export(ctx context.Context, timeframe string) (map[int]string, error) {
	years, err := e.distinctYears(ctx, timeframe)
	if err != nil {
		return nil, err
	}

	out := make(map[int]string, len(years))
	for _, year := range years {
		dir := filepath.Join(e.basePath, fmt.Sprintf("year=%d", year))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s.parquet", timeframe))
		copyStmt := fmt.Sprintf(`
			COPY (
				SELECT stock_code, timeframe, timestamp, open, high, low, close, volume, created_at
				FROM candles
				WHERE timeframe = ? AND year(to_timestamp(timestamp / 1000)) = ?
				ORDER BY stock_code, timestamp
			) TO '%s' (FORMAT PARQUET, COMPRESSION SNAPPY)
		`, path)

		if err := e.client.Exec(ctx, copyStmt, timeframe, year); err != nil {
			return nil, fmt.Errorf("failed to export year %d: %w", year, err)
		}
		out[year] = path
	}

	return out, nil
}

// distinctYears lists the calendar years present in the buffer for a timeframe
func (e *Exporter) distinctYears(ctx context.Context, timeframe string) ([]int, error) {
	rows, err := e.client.Query(ctx, `
		SELECT DISTINCT year(to_timestamp(timestamp / 1000)) AS y
		FROM candles
		WHERE timeframe = ?
		ORDER BY y
	`, timeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to query export years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
