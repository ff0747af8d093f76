package backtest

import (
	"context"
	"sort"

	"github.com/quantfold/pickback/internal/datasource"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"go.uber.org/zap"
)

// Engine runs one exit policy over an ordered pick universe. Each run is a
// pure function of (picks, price series, parameters): the engine never
// mutates its inputs and keeps no state between runs, so a single Engine is
// safe for concurrent Run calls.
type Engine struct {
	prices datasource.PriceSource
	log    *logger.Logger
}

// NewEngine creates a backtest engine reading price paths from the given
// source.
func NewEngine(prices datasource.PriceSource, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		prices: prices,
		log:    log,
	}
}

// Run simulates every pick under the given parameters and aggregates the
// result. Picks are processed ordered by (pick_date ASC, instrument_id ASC);
// capital compounds trade-to-trade in that order, so trade processing within
// a run is strictly sequential. The result carries no wall-clock timestamp;
// identical inputs yield byte-identical results, and the save path stamps
// the run when it is persisted.
func (e *Engine) Run(ctx context.Context, picks []types.Pick, params types.StrategyParameters) (types.BacktestResult, error) {
	if e.prices == nil {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestNoSource, "no price source configured")
	}

	if err := params.Validate(); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy parameters", err)
	}

	ordered := orderPicks(picks)

	capital := params.InitialCapital
	peak := capital
	maxDrawdownPct := 0.0
	totalFees := 0.0
	trades := make([]types.Trade, 0, len(ordered))

	for _, pick := range ordered {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, err
		}

		if err := pick.Validate(); err != nil {
			e.log.Debug("skipping invalid pick",
				zap.String("instrument", pick.InstrumentID),
				zap.Error(err),
			)

			continue
		}

		path, err := e.prices.GetPricePath(ctx, pick.InstrumentID, pick.PickDate, params.MaxHoldPeriods+PathSafetyMargin)
		if err != nil {
			return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load price path for %s", pick.InstrumentID)
		}

		trade, ok := SimulateTrade(pick, path, params, capital)
		if !ok {
			// Position value below the minimum lot floor: skip the pick,
			// never the run.
			continue
		}

		trades = append(trades, trade)

		capital += trade.NetProfit
		totalFees += trade.FeesPaid

		if capital > peak {
			peak = capital
		}

		if peak > 0 {
			drawdownPct := (peak - capital) / peak * 100
			if drawdownPct > maxDrawdownPct {
				maxDrawdownPct = drawdownPct
			}
		}
	}

	result := buildResult(trades, params)
	result.FinalCapital = capital
	result.MaxDrawdownPct = maxDrawdownPct
	result.TotalFees = totalFees

	if params.InitialCapital > 0 {
		result.TotalReturnPct = (capital - params.InitialCapital) / params.InitialCapital * 100
		result.FeeDragPct = totalFees / params.InitialCapital * 100
	}

	return result, nil
}

// orderPicks returns a copy sorted by (pick_date ASC, instrument_id ASC).
// The iteration order affects capital compounding and must be stable across
// runs for determinism.
func orderPicks(picks []types.Pick) []types.Pick {
	ordered := make([]types.Pick, len(picks))
	copy(ordered, picks)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PickDate.Equal(ordered[j].PickDate) {
			return ordered[i].PickDate.Before(ordered[j].PickDate)
		}

		return ordered[i].InstrumentID < ordered[j].InstrumentID
	})

	return ordered
}
