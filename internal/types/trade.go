package types

import "time"

// ExitReason is the terminal condition that closed a simulated trade.
type ExitReason string

const (
	ExitReasonTakeProfit  ExitReason = "take_profit"
	ExitReasonStopLoss    ExitReason = "stop_loss"
	ExitReasonMaxHold     ExitReason = "max_hold"
	ExitReasonEndOfData   ExitReason = "end_of_data"
	ExitReasonNoPriceData ExitReason = "no_price_data"
)

// Trade is the closed outcome of simulating one pick under one exit policy.
// A trade is created once per pick per backtest run and never mutated.
type Trade struct {
	InstrumentID  string     `json:"instrument_id" yaml:"instrument_id"`
	AlgorithmName string     `json:"algorithm_name" yaml:"algorithm_name"`
	Direction     Direction  `json:"direction" yaml:"direction"`
	EntryDate     time.Time  `json:"entry_date" yaml:"entry_date"`
	EntryPrice    float64    `json:"entry_price" yaml:"entry_price"`
	ExitDate      time.Time  `json:"exit_date" yaml:"exit_date"`
	ExitPrice     float64    `json:"exit_price" yaml:"exit_price"`
	PositionSize  float64    `json:"position_size" yaml:"position_size"`
	GrossProfit   float64    `json:"gross_profit" yaml:"gross_profit"`
	FeesPaid      float64    `json:"fees_paid" yaml:"fees_paid"`
	NetProfit     float64    `json:"net_profit" yaml:"net_profit"`
	ReturnPct     float64    `json:"return_pct" yaml:"return_pct"`
	ExitReason    ExitReason `json:"exit_reason" yaml:"exit_reason"`
	HoldPeriods   int        `json:"hold_periods" yaml:"hold_periods"`
}

// IsWin reports whether the trade counts as a winner. A trade with zero net
// profit counts as losing.
func (t Trade) IsWin() bool {
	return t.NetProfit > 0
}
