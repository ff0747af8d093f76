// Package indicator implements the technical indicator library: moving
// averages, RSI, MACD, Bollinger Bands, and the overall signal score derived
// from them. All functions are pure and operate on ascending closing-price
// sequences. Insufficient history yields optional.None, never a zero value.
package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// SMA returns the simple moving average of the trailing period values, or
// None if fewer than period values exist.
func SMA(values []float64, period int) optional.Option[float64] {
	if period <= 0 || len(values) < period {
		return optional.None[float64]()
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}

	return optional.Some(sum / float64(period))
}

// SMASeries returns a series aligned to the input length where each entry is
// the SMA over the trailing window ending at that index. Leading entries are
// None until enough history exists.
func SMASeries(values []float64, period int) []optional.Option[float64] {
	series := make([]optional.Option[float64], len(values))
	if period <= 0 {
		return series
	}

	sum := 0.0

	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			series[i] = optional.Some(sum / float64(period))
		}
	}

	return series
}

// EMASeries returns the exponential moving average series aligned to the
// input length. The EMA seeds with the simple average of the first period
// values, then applies the standard 2/(period+1) multiplier.
func EMASeries(values []float64, period int) []optional.Option[float64] {
	series := make([]optional.Option[float64], len(values))
	if period <= 0 || len(values) < period {
		return series
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}

	ema := seed / float64(period)
	series[period-1] = optional.Some(ema)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		series[i] = optional.Some(ema)
	}

	return series
}

// populationStdDev computes the population standard deviation of values
// around their mean.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}

	return math.Sqrt(variance / float64(len(values)))
}
