package types

import "time"

// Breakdown aggregates trades sharing one grouping key (algorithm name,
// direction, or exit reason).
type Breakdown struct {
	Key            string  `json:"key" yaml:"key"`
	Trades         int     `json:"trades" yaml:"trades"`
	Wins           int     `json:"wins" yaml:"wins"`
	TotalNetProfit float64 `json:"total_net_profit" yaml:"total_net_profit"`
	AvgReturnPct   float64 `json:"avg_return_pct" yaml:"avg_return_pct"`
}

// BacktestResult aggregates an ordered sequence of trades for one parameter
// set. It is derived state: recomputable at any time from the trade list and
// never the source of truth independent of its inputs.
type BacktestResult struct {
	// RunID is assigned by the caller persisting this result; empty for
	// in-memory runs.
	RunID     string             `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Params    StrategyParameters `json:"params" yaml:"params"`

	TotalTrades   int     `json:"total_trades" yaml:"total_trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`

	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	FinalCapital   float64 `json:"final_capital" yaml:"final_capital"`
	TotalReturnPct float64 `json:"total_return_pct" yaml:"total_return_pct"`

	AvgWinPct      float64 `json:"avg_win_pct" yaml:"avg_win_pct"`
	AvgLossPct     float64 `json:"avg_loss_pct" yaml:"avg_loss_pct"`
	BestTradePct   float64 `json:"best_trade_pct" yaml:"best_trade_pct"`
	WorstTradePct  float64 `json:"worst_trade_pct" yaml:"worst_trade_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`

	TotalFees  float64 `json:"total_fees" yaml:"total_fees"`
	FeeDragPct float64 `json:"fee_drag_pct" yaml:"fee_drag_pct"`

	SharpeRatio    float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio" yaml:"sortino_ratio"`
	ProfitFactor   float64 `json:"profit_factor" yaml:"profit_factor"`
	Expectancy     float64 `json:"expectancy" yaml:"expectancy"`
	AvgHoldPeriods float64 `json:"avg_hold_periods" yaml:"avg_hold_periods"`

	Trades []Trade `json:"trades" yaml:"trades"`

	AlgorithmBreakdown  []Breakdown `json:"algorithm_breakdown" yaml:"algorithm_breakdown"`
	DirectionBreakdown  []Breakdown `json:"direction_breakdown" yaml:"direction_breakdown"`
	ExitReasonBreakdown []Breakdown `json:"exit_reason_breakdown" yaml:"exit_reason_breakdown"`
}
