package types

import (
	"github.com/go-playground/validator/v10"
)

// NoExitSentinel disables a take-profit or stop-loss threshold. Any value at
// or above it means "no target" / "no stop" (used by buy-and-hold scenarios).
const NoExitSentinel = 999.0

// MinPositionValue is the minimum lot floor in currency units. Picks whose
// position value falls below it are skipped rather than opened.
const MinPositionValue = 10.0

// StrategyParameters is the exit policy and sizing configuration for one
// backtest run.
type StrategyParameters struct {
	// TakeProfitPct is the profit target in percent of the entry price.
	TakeProfitPct float64 `json:"take_profit_pct" yaml:"take_profit_pct" validate:"gt=0"`
	// StopLossPct is the loss limit in percent of the entry price.
	StopLossPct float64 `json:"stop_loss_pct" yaml:"stop_loss_pct" validate:"gt=0"`
	// MaxHoldPeriods is the maximum number of bars a trade may stay open.
	MaxHoldPeriods int `json:"max_hold_periods" yaml:"max_hold_periods" validate:"gt=0"`
	// InitialCapital is the starting capital for the run.
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital" validate:"gte=0"`
	// PositionSizePct is the share of running capital allocated per trade.
	PositionSizePct float64 `json:"position_size_pct" yaml:"position_size_pct" validate:"gt=0,lte=100"`
	// TradingFeePct is the fee charged on each side's notional, in percent.
	TradingFeePct float64 `json:"trading_fee_pct" yaml:"trading_fee_pct" validate:"gte=0"`
}

// DefaultParameters returns the standard exit policy used when a caller
// supplies nothing.
func DefaultParameters() StrategyParameters {
	return StrategyParameters{
		TakeProfitPct:   10,
		StopLossPct:     5,
		MaxHoldPeriods:  14,
		InitialCapital:  10000,
		PositionSizePct: 10,
		TradingFeePct:   0.1,
	}
}

// HasTakeProfit reports whether the take-profit target is active.
func (p StrategyParameters) HasTakeProfit() bool {
	return p.TakeProfitPct < NoExitSentinel
}

// HasStopLoss reports whether the stop-loss threshold is active.
func (p StrategyParameters) HasStopLoss() bool {
	return p.StopLossPct < NoExitSentinel
}

var paramsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the parameter invariants, notably position_size_pct in (0, 100].
func (p StrategyParameters) Validate() error {
	return paramsValidator.Struct(p)
}
