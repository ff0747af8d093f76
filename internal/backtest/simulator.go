// Package backtest implements the trade simulator and the backtest engine:
// the simulator closes a single pick against its subsequent price path under
// one exit policy, the engine folds many simulated trades into a running
// capital curve and aggregate statistics.
package backtest

import (
	"github.com/quantfold/pickback/internal/types"
	"github.com/shopspring/decimal"
)

// PathSafetyMargin is the number of extra bars fetched beyond
// max_hold_periods so the simulator can always observe the exit bar.
const PathSafetyMargin = 5

// SimulateTrade walks the price path bar by bar and closes the pick under
// the given exit policy. Checks are ordered stop-loss, then take-profit, then
// max-hold: when a single bar crosses both the stop and the target, the stop
// wins. This is the conservative intrabar tie-break and is pinned by tests.
//
// capitalAtEntry sizes the position. The second return value is false when
// the pick is skipped because the position value falls below the minimum lot
// floor; no trade is recorded in that case.
func SimulateTrade(pick types.Pick, path []types.PriceBar, params types.StrategyParameters, capitalAtEntry float64) (types.Trade, bool) {
	positionValue := capitalAtEntry * params.PositionSizePct / 100
	if positionValue < types.MinPositionValue {
		return types.Trade{}, false
	}

	positionSize := positionValue / pick.EntryPrice

	trade := types.Trade{
		InstrumentID:  pick.InstrumentID,
		AlgorithmName: pick.AlgorithmName,
		Direction:     pick.Direction,
		EntryDate:     pick.PickDate,
		EntryPrice:    pick.EntryPrice,
		PositionSize:  positionSize,
	}

	// Only bars strictly after the pick date count as holding periods; the
	// entry bar itself is the reference price, not a tradable move.
	bars := barsAfter(path, pick)
	if len(bars) == 0 {
		return closeWithoutData(trade, pick, params, positionValue), true
	}

	stopPrice := exitLevel(pick, -params.StopLossPct)
	targetPrice := exitLevel(pick, params.TakeProfitPct)

	var (
		exitPrice  float64
		exitReason types.ExitReason
		exitIndex  int
	)

	for d, bar := range bars {
		holdPeriods := d + 1
		worst, best := barExtremes(pick, bar)

		if params.HasStopLoss() && worst <= -params.StopLossPct {
			exitPrice = stopPrice
			exitReason = types.ExitReasonStopLoss
			exitIndex = d

			break
		}

		if params.HasTakeProfit() && best >= params.TakeProfitPct {
			exitPrice = targetPrice
			exitReason = types.ExitReasonTakeProfit
			exitIndex = d

			break
		}

		if holdPeriods >= params.MaxHoldPeriods {
			exitPrice = bar.Close
			exitReason = types.ExitReasonMaxHold
			exitIndex = d

			break
		}

		// Path exhausted: close at the final recorded bar.
		if d == len(bars)-1 {
			exitPrice = bar.Close
			exitReason = types.ExitReasonEndOfData
			exitIndex = d
		}
	}

	exitBar := bars[exitIndex]

	trade.ExitDate = exitBar.Date
	trade.ExitPrice = exitPrice
	trade.ExitReason = exitReason
	trade.HoldPeriods = exitIndex + 1
	trade.GrossProfit = grossProfit(pick.Direction, pick.EntryPrice, exitPrice, positionSize)
	trade.FeesPaid = roundTripFees(positionValue, positionSize*exitPrice, params.TradingFeePct)
	trade.NetProfit = trade.GrossProfit - trade.FeesPaid
	trade.ReturnPct = returnPct(trade.NetProfit, positionValue)

	return trade, true
}

// closeWithoutData emits the degenerate flat trade for a pick with no price
// data from its date onward: zero gross profit, entry and exit fees both
// charged. It always counts as a loss.
func closeWithoutData(trade types.Trade, pick types.Pick, params types.StrategyParameters, positionValue float64) types.Trade {
	trade.ExitDate = pick.PickDate
	trade.ExitPrice = pick.EntryPrice
	trade.ExitReason = types.ExitReasonNoPriceData
	trade.HoldPeriods = 0
	trade.GrossProfit = 0
	trade.FeesPaid = roundTripFees(positionValue, positionValue, params.TradingFeePct)
	trade.NetProfit = -trade.FeesPaid
	trade.ReturnPct = returnPct(trade.NetProfit, positionValue)

	return trade
}

func barsAfter(path []types.PriceBar, pick types.Pick) []types.PriceBar {
	start := 0
	for start < len(path) && !path[start].Date.After(pick.PickDate) {
		start++
	}

	return path[start:]
}

// barExtremes returns the direction-aware worst and best percentage moves of
// a bar relative to the entry price. For longs the worst move uses the low
// and the best the high; for shorts the signs invert.
func barExtremes(pick types.Pick, bar types.PriceBar) (worst, best float64) {
	entry := pick.EntryPrice

	if pick.Direction == types.DirectionShort {
		worst = (entry - bar.High) / entry * 100
		best = (entry - bar.Low) / entry * 100

		return worst, best
	}

	worst = (bar.Low - entry) / entry * 100
	best = (bar.High - entry) / entry * 100

	return worst, best
}

// exitLevel converts a signed percent move into an exact exit price for the
// pick's direction. Pass a negative pct for the stop side.
func exitLevel(pick types.Pick, pct float64) float64 {
	if pick.Direction == types.DirectionShort {
		return pick.EntryPrice * (1 - pct/100)
	}

	return pick.EntryPrice * (1 + pct/100)
}

func grossProfit(direction types.Direction, entryPrice, exitPrice, positionSize float64) float64 {
	if direction == types.DirectionShort {
		return (entryPrice - exitPrice) * positionSize
	}

	return (exitPrice - entryPrice) * positionSize
}

// roundTripFees charges the fee on both the entry and exit notional. Each
// side is rounded to 2 decimals before summation, matching how the fees
// would settle as separate ledger entries.
func roundTripFees(entryNotional, exitNotional, feePct float64) float64 {
	rate := decimal.NewFromFloat(feePct).Div(decimal.NewFromInt(100))
	entryFee := decimal.NewFromFloat(entryNotional).Mul(rate).Round(2)
	exitFee := decimal.NewFromFloat(exitNotional).Mul(rate).Round(2)

	fees, _ := entryFee.Add(exitFee).Float64()

	return fees
}

func returnPct(netProfit, positionValue float64) float64 {
	if positionValue == 0 {
		return 0
	}

	return netProfit / positionValue * 100
}
