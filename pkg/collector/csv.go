package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/seoulquant/candlevec/pkg/model"
)

// CSVProvider reads candles from a CSV file with a header row. Expected
// columns: stock_code, timeframe, timestamp, open, high, low, close, volume.
// Column order is taken from the header, so extra columns are ignored.
type CSVProvider struct {
	path string
}

// NewCSVProvider creates a provider over the given CSV file
func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{path: path}
}

var _ Provider = (*CSVProvider)(nil)

// FetchCandles reads the file and returns candles matching the filters.
// Empty stockCode or timeframe matches everything.
func (p *CSVProvider) FetchCandles(ctx context.Context, stockCode, timeframe string, start, end int64) ([]model.Candle, error) {
	all, err := p.readAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.Candle
	for _, c := range all {
		if stockCode != "" && c.StockCode != stockCode {
			continue
		}
		if timeframe != "" && c.Timeframe != timeframe {
			continue
		}
		if c.Timestamp < start || c.Timestamp > end {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FetchLatest reads the file and returns the most recent limit candles
func (p *CSVProvider) FetchLatest(ctx context.Context, stockCode, timeframe string, limit int) ([]model.Candle, error) {
	const maxInt64 = int64(^uint64(0) >> 1)
	candles, err := p.FetchCandles(ctx, stockCode, timeframe, 0, maxInt64)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// ReadAll returns every candle in the file, unfiltered
func (p *CSVProvider) ReadAll(ctx context.Context) ([]model.Candle, error) {
	return p.readAll(ctx)
}

func (p *CSVProvider) readAll(ctx context.Context) ([]model.Candle, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"stock_code", "timestamp", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv file missing required column %q", required)
		}
	}

	var candles []model.Candle
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		line++

		c, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseRecord(record []string, cols map[string]int) (model.Candle, error) {
	var c model.Candle
	var err error

	c.StockCode = record[cols["stock_code"]]
	if i, ok := cols["timeframe"]; ok {
		c.Timeframe = record[i]
	}

	if c.Timestamp, err = strconv.ParseInt(record[cols["timestamp"]], 10, 64); err != nil {
		return c, fmt.Errorf("invalid timestamp: %w", err)
	}
	if c.Open, err = strconv.ParseFloat(record[cols["open"]], 64); err != nil {
		return c, fmt.Errorf("invalid open: %w", err)
	}
	if c.High, err = strconv.ParseFloat(record[cols["high"]], 64); err != nil {
		return c, fmt.Errorf("invalid high: %w", err)
	}
	if c.Low, err = strconv.ParseFloat(record[cols["low"]], 64); err != nil {
		return c, fmt.Errorf("invalid low: %w", err)
	}
	if c.Close, err = strconv.ParseFloat(record[cols["close"]], 64); err != nil {
		return c, fmt.Errorf("invalid close: %w", err)
	}
	if c.Volume, err = strconv.ParseInt(record[cols["volume"]], 10, 64); err != nil {
		return c, fmt.Errorf("invalid volume: %w", err)
	}
	return c, nil
}
