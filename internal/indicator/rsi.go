package indicator

import "github.com/moznion/go-optional"

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the Wilder-smoothed Relative Strength Index over the closing
// sequence. The first period deltas use a plain mean; subsequent deltas use
// Wilder's smoothing avg = (avg*(period-1) + new) / period. Returns None if
// fewer than period+1 closes exist. A zero average loss yields exactly 100.
func RSI(closes []float64, period int) optional.Option[float64] {
	if period <= 0 || len(closes) < period+1 {
		return optional.None[float64]()
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing for the remainder of the series.
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return optional.Some(100.0)
	}

	rs := avgGain / avgLoss

	return optional.Some(100 - (100 / (1 + rs)))
}
