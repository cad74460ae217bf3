package feature

import (
	"fmt"
	"math"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Projector turns one window into a fixed-shape feature table. Implementations
// guarantee the table has exactly window-size rows, a fixed caller-known
// column order, and no NaN/Inf values.
type Projector interface {
	Project(w model.Window) (*Table, error)
	Columns() []string
}

// Table is the per-window feature matrix: one row per candle, one column per
// feature, in the projector's fixed column order.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Flatten returns the table as a single raw vector in row-major order: all
// features of candle 1, then all features of candle 2, and so on. The result
// has length rows x columns and is the embedder's input.
func (t *Table) Flatten() []float64 {
	out := make([]float64, 0, len(t.Rows)*len(t.Columns))
	for _, row := range t.Rows {
		out = append(out, row...)
	}
	return out
}

// checkFinite verifies the no-NaN guarantee before the table leaves the
// projector.
func (t *Table) checkFinite() error {
	for i, row := range t.Rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("feature %q at row %d is %v, violating the no-NaN guarantee",
					t.Columns[j], i, v)
			}
		}
	}
	return nil
}
