package feature

import (
	"fmt"

	"github.com/seoulquant/candlevec/pkg/model"
)

// NumFeatures is the number of feature columns Engineer produces per candle:
// 5 z-scored OHLCV columns plus 5 indicators.
const NumFeatures = 10

// Engineer is the default Projector: per-candle z-scored OHLCV plus RSI,
// MACD, Bollinger upper band, SMA and EMA, all computed from the window
// itself. The resulting table always has window-size rows and NumFeatures
// columns with no NaN values.
type Engineer struct {
	RSIPeriod int
	MACDFast  int
	MACDSlow  int
	BBPeriod  int
	BBStd     float64
	SMAPeriod int
	EMAPeriod int
}

// NewEngineer creates an engineer with the standard indicator parameters
func NewEngineer() *Engineer {
	return &Engineer{
		RSIPeriod: 14,
		MACDFast:  12,
		MACDSlow:  26,
		BBPeriod:  20,
		BBStd:     2.0,
		SMAPeriod: 20,
		EMAPeriod: 12,
	}
}

var _ Projector = (*Engineer)(nil)

// Columns returns the fixed feature column order. Downstream consumers rely
// on this order when flattening; it must match what the embedder was trained
// with.
func (e *Engineer) Columns() []string {
	return []string{
		"open_norm", "high_norm", "low_norm", "close_norm", "volume_norm",
		"rsi", "macd", "bb_upper",
		fmt.Sprintf("sma_%d", e.SMAPeriod),
		fmt.Sprintf("ema_%d", e.EMAPeriod),
	}
}

// RawDim returns the flattened vector length for a given window size
func (e *Engineer) RawDim(windowSize int) int {
	return windowSize * NumFeatures
}

// Project computes the feature table for one window
func (e *Engineer) Project(w model.Window) (*Table, error) {
	n := len(w.Candles)
	if n == 0 {
		return nil, fmt.Errorf("cannot project an empty window")
	}

	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range w.Candles {
		opens[i] = c.Open
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = float64(c.Volume)
	}

	columns := [][]float64{
		zscore(opens),
		zscore(highs),
		zscore(lows),
		zscore(closes),
		zscore(volumes),
		rsi(closes, e.RSIPeriod),
		macdLine(closes, e.MACDFast, e.MACDSlow),
		bollingerUpper(closes, e.BBPeriod, e.BBStd),
		sma(closes, e.SMAPeriod),
		ema(closes, e.EMAPeriod),
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		rows[i] = row
	}

	table := &Table{Columns: e.Columns(), Rows: rows}
	if err := table.checkFinite(); err != nil {
		return nil, err
	}
	return table, nil
}
