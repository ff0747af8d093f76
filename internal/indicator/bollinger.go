package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/pickback/internal/types"
)

// Default Bollinger configuration: 20-period middle band, 2 standard
// deviations for the envelope.
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
)

// Bollinger computes the Bollinger Band triple over the trailing window using
// the population standard deviation. Returns None if fewer than period closes
// exist.
func Bollinger(closes []float64, period int, k float64) optional.Option[types.BollingerValue] {
	if period <= 0 || len(closes) < period {
		return optional.None[types.BollingerValue]()
	}

	window := closes[len(closes)-period:]

	middle := 0.0
	for _, v := range window {
		middle += v
	}

	middle /= float64(period)

	stdDev := populationStdDev(window)
	upper := middle + k*stdDev
	lower := middle - k*stdDev

	bandwidthPct := 0.0
	if middle != 0 {
		bandwidthPct = (upper - lower) / middle * 100
	}

	return optional.Some(types.BollingerValue{
		Upper:        upper,
		Middle:       middle,
		Lower:        lower,
		BandwidthPct: bandwidthPct,
	})
}
