package feature

import "math"

// Technical indicators computed over a single window, warm-up free: every
// output slice has the same length as the input and every element is defined.
// Early elements use expanding lookbacks instead of emitting NaN, so a
// 60-candle window produces a full 60-row feature table.

// sma returns the simple moving average of values. Rows before the period is
// reached use an expanding mean.
func sma(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
			out[i] = sum / float64(period)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// ema returns the exponential moving average with alpha = 2/(period+1),
// seeded with the first value.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// bollingerUpper returns the upper Bollinger band: rolling mean plus mult
// rolling standard deviations, with expanding lookbacks before the period is
// reached.
func bollingerUpper(values []float64, period int, mult float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		mean, std := meanStd(values[start : i+1])
		out[i] = mean + mult*std
	}
	return out
}

// rsi returns Wilder's relative strength index. The first element is the
// neutral 50; averages expand until the period is reached and are Wilder-
// smoothed afterwards.
func rsi(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	out[0] = 50

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		if i <= period {
			avgGain = (avgGain*float64(i-1) + gain) / float64(i)
			avgLoss = (avgLoss*float64(i-1) + loss) / float64(i)
		} else {
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// macdLine returns the MACD line: fast EMA minus slow EMA
func macdLine(closes []float64, fast, slow int) []float64 {
	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = emaFast[i] - emaSlow[i]
	}
	return out
}

// meanStd calculates mean and population standard deviation
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	std = math.Sqrt(sumSquares / float64(len(values)))

	return mean, std
}
