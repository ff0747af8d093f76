package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/pickback/internal/types"
)

// MACD configuration: EMA12 - EMA26 as the MACD line, EMA9 of that line as
// the signal line.
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9

	// MinMACDPoints is the minimum history for a defined signal line
	// (slow period + signal period).
	MinMACDPoints = macdSlowPeriod + macdSignalPeriod
)

// MACD computes the MACD line, signal line, and histogram over the closing
// sequence. Returns None if fewer than MinMACDPoints closes exist.
func MACD(closes []float64) optional.Option[types.MACDValue] {
	if len(closes) < MinMACDPoints {
		return optional.None[types.MACDValue]()
	}

	fast := EMASeries(closes, macdFastPeriod)
	slow := EMASeries(closes, macdSlowPeriod)

	// The MACD line is defined from the first index where both EMAs exist.
	macdLine := make([]float64, 0, len(closes)-macdSlowPeriod+1)
	for i := macdSlowPeriod - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fast[i].Unwrap()-slow[i].Unwrap())
	}

	signalSeries := EMASeries(macdLine, macdSignalPeriod)

	signal := signalSeries[len(signalSeries)-1]
	if signal.IsNone() {
		return optional.None[types.MACDValue]()
	}

	macd := macdLine[len(macdLine)-1]
	sig := signal.Unwrap()

	return optional.Some(types.MACDValue{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
	})
}
