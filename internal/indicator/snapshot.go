package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
)

// Snapshot assembles the full technical snapshot for an instrument from its
// ascending bar series. The snapshot is derived state recomputed on every
// call; it is never cached or persisted by this package.
func Snapshot(instrumentID string, bars []types.PriceBar) types.TechnicalSnapshot {
	snapshot := types.TechnicalSnapshot{
		InstrumentID: instrumentID,
		SMA20:        optional.None[float64](),
		SMA50:        optional.None[float64](),
		SMA200:       optional.None[float64](),
		RSI14:        optional.None[float64](),
		MACD:         optional.None[types.MACDValue](),
		Bollinger:    optional.None[types.BollingerValue](),
	}

	if len(bars) == 0 {
		snapshot.Overall = types.OverallSignal{Label: types.SignalNeutral, Score: 0, Reasons: []string{}}

		return snapshot
	}

	closes := types.Closes(bars)
	lastClose := closes[len(closes)-1]

	snapshot.AsOf = bars[len(bars)-1].Date
	snapshot.LastClose = lastClose

	snapshot.SMA20 = SMA(closes, 20)
	snapshot.SMA50 = SMA(closes, 50)
	snapshot.SMA200 = SMA(closes, 200)

	snapshot.SMA20DistancePct = distancePct(lastClose, snapshot.SMA20)
	snapshot.SMA50DistancePct = distancePct(lastClose, snapshot.SMA50)
	snapshot.SMA200DistancePct = distancePct(lastClose, snapshot.SMA200)

	snapshot.RSI14 = RSI(closes, DefaultRSIPeriod)
	if snapshot.RSI14.IsSome() {
		snapshot.RSIZone = RSIZoneFor(snapshot.RSI14.Unwrap())
	}

	snapshot.MACD = MACD(closes)
	snapshot.Bollinger = Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerK)

	snapshot.Overall = OverallSignal(
		lastClose,
		snapshot.SMA20, snapshot.SMA50, snapshot.SMA200,
		snapshot.RSI14,
		snapshot.MACD,
		snapshot.Bollinger,
	)

	return snapshot
}

// RequireSnapshot is the strict variant of Snapshot for serving paths. An
// empty bar series becomes an *errors.InsufficientDataError carrying the
// required and actual bar counts instead of an all-None snapshot.
func RequireSnapshot(instrumentID string, bars []types.PriceBar) (types.TechnicalSnapshot, error) {
	if len(bars) == 0 {
		return types.TechnicalSnapshot{}, errors.NewInsufficientDataErrorf(1, 0, instrumentID,
			"no price history for instrument %s", instrumentID)
	}

	return Snapshot(instrumentID, bars), nil
}

// distancePct is the percent distance of price from a moving average.
func distancePct(price float64, ma optional.Option[float64]) optional.Option[float64] {
	if ma.IsNone() {
		return optional.None[float64]()
	}

	value := ma.Unwrap()
	if value == 0 {
		return optional.None[float64]()
	}

	return optional.Some((price - value) / value * 100)
}
