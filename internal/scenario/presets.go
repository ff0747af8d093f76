// Package scenario runs the backtest engine across a fixed menu of named
// exit-policy presets, and across algorithms under one fixed preset, ranking
// the outcomes by total return.
package scenario

import (
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
)

// DefaultScenarioKey is the preset used as the comparison baseline.
const DefaultScenarioKey = "default"

// presets is the fixed scenario menu. Take-profit and stop-loss values at or
// above the sentinel disable that exit, which is how the buy-and-hold
// scenarios are expressed.
var presets = []types.ScenarioDefinition{
	{
		Key:  DefaultScenarioKey,
		Name: "Default 10/5",
		Params: types.StrategyParameters{
			TakeProfitPct:   10,
			StopLossPct:     5,
			MaxHoldPeriods:  14,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
	{
		Key:  "scalp_5",
		Name: "Scalp 5%",
		Params: types.StrategyParameters{
			TakeProfitPct:   5,
			StopLossPct:     3,
			MaxHoldPeriods:  3,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
	{
		Key:  "swing_20",
		Name: "Swing Trade 20%",
		Params: types.StrategyParameters{
			TakeProfitPct:   20,
			StopLossPct:     10,
			MaxHoldPeriods:  30,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
	{
		Key:  "position_50",
		Name: "Position Trade 50%",
		Params: types.StrategyParameters{
			TakeProfitPct:   50,
			StopLossPct:     20,
			MaxHoldPeriods:  90,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
	{
		Key:  "hodl_3m",
		Name: "HODL 3 Months",
		Params: types.StrategyParameters{
			TakeProfitPct:   types.NoExitSentinel,
			StopLossPct:     types.NoExitSentinel,
			MaxHoldPeriods:  90,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
	{
		Key:  "hodl_1y",
		Name: "HODL 1 Year",
		Params: types.StrategyParameters{
			TakeProfitPct:   types.NoExitSentinel,
			StopLossPct:     types.NoExitSentinel,
			MaxHoldPeriods:  365,
			InitialCapital:  10000,
			PositionSizePct: 10,
			TradingFeePct:   0.1,
		},
	},
}

// Presets returns a copy of the scenario menu in its canonical order.
func Presets() []types.ScenarioDefinition {
	menu := make([]types.ScenarioDefinition, len(presets))
	copy(menu, presets)

	return menu
}

// PresetByKey looks up one scenario definition.
func PresetByKey(key string) (types.ScenarioDefinition, error) {
	for _, preset := range presets {
		if preset.Key == key {
			return preset, nil
		}
	}

	return types.ScenarioDefinition{}, errors.Newf(errors.ErrCodeUnknownScenario, "unknown scenario %q", key)
}
