package window_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulquant/candlevec/pkg/model"
	"github.com/seoulquant/candlevec/pkg/window"
)

func TestBuilderMatchesExtractor(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		stride int
		count  int
	}{
		{"stride one", 60, 1, 100},
		{"stride ten", 60, 10, 100},
		{"small windows", 5, 2, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tenMinConfig(tt.size, tt.stride)
			candles := tenMinCandles("005930", tt.count)

			e, err := window.NewExtractor(cfg)
			require.NoError(t, err)
			b, err := window.NewBuilder(cfg, "005930", model.Timeframe10Min)
			require.NoError(t, err)

			batch := e.ExtractAll(candles)
			streamed := b.ProcessCandles(candles)

			require.Equal(t, len(batch), len(streamed))
			for i := range batch {
				require.Equal(t, batch[i].WindowID, streamed[i].WindowID)
				require.Equal(t, batch[i].Candles, streamed[i].Candles)
			}
		})
	}
}

func TestBuilderSkipsGappedWindows(t *testing.T) {
	cfg := tenMinConfig(5, 1)
	b, err := window.NewBuilder(cfg, "005930", model.Timeframe10Min)
	require.NoError(t, err)

	candles := tenMinCandles("005930", 12)
	for i := range candles {
		if i >= 6 {
			candles[i].Timestamp += (25 * time.Minute).Milliseconds()
		}
	}

	windows := b.ProcessCandles(candles)

	// Contiguous runs of 6 candles each yield 2 windows apiece
	require.Len(t, windows, 4)
	for _, w := range windows {
		require.Equal(t, 40*time.Minute, w.Span())
	}
}

func TestBuilderReset(t *testing.T) {
	cfg := tenMinConfig(5, 1)
	b, err := window.NewBuilder(cfg, "005930", model.Timeframe10Min)
	require.NoError(t, err)

	candles := tenMinCandles("005930", 5)
	require.Len(t, b.ProcessCandles(candles), 1)
	require.Equal(t, 5, b.CurrentSize())

	b.Reset()
	require.Equal(t, 0, b.CurrentSize())
	require.Len(t, b.ProcessCandles(candles), 1)
}

func TestBuilderInvalidConfig(t *testing.T) {
	_, err := window.NewBuilder(tenMinConfig(0, 1), "005930", model.Timeframe10Min)
	require.ErrorIs(t, err, window.ErrInvalidSize)
}
