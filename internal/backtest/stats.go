package backtest

import (
	"math"

	"github.com/quantfold/pickback/internal/types"
)

// Annualization factor for daily-bar risk ratios.
const tradingDaysPerYear = 252

// ProfitFactorCeiling is reported when a run has winners but no losers.
const ProfitFactorCeiling = 999.0

// buildResult computes every statistic derivable from the closed trade list.
// Capital-curve figures (final capital, drawdown, fees) are filled by the
// engine's fold and left zero here.
func buildResult(trades []types.Trade, params types.StrategyParameters) types.BacktestResult {
	result := types.BacktestResult{
		Params:         params,
		InitialCapital: params.InitialCapital,
		TotalTrades:    len(trades),
		Trades:         trades,
	}

	if len(trades) == 0 {
		result.AlgorithmBreakdown = []types.Breakdown{}
		result.DirectionBreakdown = []types.Breakdown{}
		result.ExitReasonBreakdown = []types.Breakdown{}

		return result
	}

	returns := make([]float64, len(trades))

	var (
		winReturnSum, lossReturnSum float64
		grossWinnings, grossLosses  float64
		bestTradePct, worstTradePct float64
		holdSum                     int
	)

	bestTradePct = trades[0].ReturnPct
	worstTradePct = trades[0].ReturnPct

	for i, trade := range trades {
		returns[i] = trade.ReturnPct
		holdSum += trade.HoldPeriods

		if trade.IsWin() {
			result.WinningTrades++

			winReturnSum += trade.ReturnPct
			grossWinnings += trade.NetProfit
		} else {
			result.LosingTrades++

			lossReturnSum += trade.ReturnPct
			if trade.NetProfit < 0 {
				grossLosses += -trade.NetProfit
			}
		}

		if trade.ReturnPct > bestTradePct {
			bestTradePct = trade.ReturnPct
		}

		if trade.ReturnPct < worstTradePct {
			worstTradePct = trade.ReturnPct
		}
	}

	result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	result.BestTradePct = bestTradePct
	result.WorstTradePct = worstTradePct
	result.AvgHoldPeriods = float64(holdSum) / float64(result.TotalTrades)

	if result.WinningTrades > 0 {
		result.AvgWinPct = winReturnSum / float64(result.WinningTrades)
	}

	if result.LosingTrades > 0 {
		result.AvgLossPct = lossReturnSum / float64(result.LosingTrades)
	}

	result.SharpeRatio = sharpeRatio(returns)
	result.SortinoRatio = sortinoRatio(returns)
	result.ProfitFactor = profitFactor(grossWinnings, grossLosses)
	result.Expectancy = expectancy(result)

	result.AlgorithmBreakdown = groupTrades(trades, func(t types.Trade) string { return t.AlgorithmName })
	result.DirectionBreakdown = groupTrades(trades, func(t types.Trade) string { return string(t.Direction) })
	result.ExitReasonBreakdown = groupTrades(trades, func(t types.Trade) string { return string(t.ExitReason) })

	return result
}

// sharpeRatio annualizes mean/stddev of per-trade returns with √252. Returns
// 0 with fewer than 2 trades or zero volatility.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := meanOf(returns)

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}

	stdDev := math.Sqrt(variance / float64(len(returns)))
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}

// sortinoRatio is the Sharpe variant whose denominator uses only the
// downside: the root of the mean of squared negative returns.
func sortinoRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	downsideSquares := 0.0
	downsideCount := 0

	for _, r := range returns {
		if r < 0 {
			downsideSquares += r * r
			downsideCount++
		}
	}

	if downsideCount == 0 {
		return 0
	}

	downsideDev := math.Sqrt(downsideSquares / float64(downsideCount))
	if downsideDev == 0 {
		return 0
	}

	return meanOf(returns) / downsideDev * math.Sqrt(tradingDaysPerYear)
}

// profitFactor is gross winnings over gross losses, with a fixed ceiling
// when there are no losses.
func profitFactor(grossWinnings, grossLosses float64) float64 {
	if grossLosses == 0 {
		if grossWinnings > 0 {
			return ProfitFactorCeiling
		}

		return 0
	}

	return grossWinnings / grossLosses
}

// expectancy is the probability-weighted average return per trade. The loss
// leg uses the magnitude of the average losing return.
func expectancy(result types.BacktestResult) float64 {
	if result.TotalTrades == 0 {
		return 0
	}

	winFraction := float64(result.WinningTrades) / float64(result.TotalTrades)
	lossFraction := float64(result.LosingTrades) / float64(result.TotalTrades)

	return winFraction*result.AvgWinPct - lossFraction*math.Abs(result.AvgLossPct)
}

// groupTrades buckets the ordered trade list by key, preserving first-seen
// key order so results are deterministic.
func groupTrades(trades []types.Trade, keyOf func(types.Trade) string) []types.Breakdown {
	order := []string{}
	buckets := map[string]*types.Breakdown{}
	returnSums := map[string]float64{}

	for _, trade := range trades {
		key := keyOf(trade)

		bucket, ok := buckets[key]
		if !ok {
			bucket = &types.Breakdown{Key: key}
			buckets[key] = bucket
			order = append(order, key)
		}

		bucket.Trades++
		bucket.TotalNetProfit += trade.NetProfit
		returnSums[key] += trade.ReturnPct

		if trade.IsWin() {
			bucket.Wins++
		}
	}

	breakdowns := make([]types.Breakdown, 0, len(order))

	for _, key := range order {
		bucket := buckets[key]
		bucket.AvgReturnPct = returnSums[key] / float64(bucket.Trades)
		breakdowns = append(breakdowns, *bucket)
	}

	return breakdowns
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
