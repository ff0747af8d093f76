// Package optimizer searches the exit-parameter space for each algorithm:
// a per-algorithm grid search selecting the best-returning combination, and
// a wider permutation scan characterizing how robust the strategy universe
// is across the whole grid.
package optimizer

import (
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
)

// MaxPermutations caps the cross-product size a caller may request. Grid
// searches are bounded by construction, not by timeouts.
const MaxPermutations = 5000

// Grid is the cross-product of three named candidate axes. Cells enumerate
// take-profit outermost and hold innermost, so cell order is deterministic.
type Grid struct {
	TakeProfitPcts []float64 `json:"take_profit_pcts" yaml:"take_profit_pcts"`
	StopLossPcts   []float64 `json:"stop_loss_pcts" yaml:"stop_loss_pcts"`
	HoldPeriods    []int     `json:"hold_periods" yaml:"hold_periods"`
}

// DefaultGrid is the per-algorithm search space used by Optimize.
func DefaultGrid() Grid {
	return Grid{
		TakeProfitPcts: []float64{5, 10, 15, 20, 25, 30},
		StopLossPcts:   []float64{3, 5, 7, 10, 15},
		HoldPeriods:    []int{3, 7, 14, 30, 60},
	}
}

// ScanGrid is the denser 11x9x10 space used by the permutation scan.
func ScanGrid() Grid {
	return Grid{
		TakeProfitPcts: []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 25},
		StopLossPcts:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 10},
		HoldPeriods:    []int{1, 2, 3, 5, 7, 10, 14, 21, 30, 45},
	}
}

// Size is the number of cells in the cross-product.
func (g Grid) Size() int {
	return len(g.TakeProfitPcts) * len(g.StopLossPcts) * len(g.HoldPeriods)
}

// Validate checks that every axis is populated and the product is bounded.
func (g Grid) Validate() error {
	if len(g.TakeProfitPcts) == 0 || len(g.StopLossPcts) == 0 || len(g.HoldPeriods) == 0 {
		return errors.New(errors.ErrCodeEmptyGrid, "every grid axis needs at least one candidate")
	}

	for _, hold := range g.HoldPeriods {
		if hold <= 0 {
			return errors.Newf(errors.ErrCodeInvalidGridAxis, "hold periods must be positive, got %d", hold)
		}
	}

	if g.Size() > MaxPermutations {
		return errors.Newf(errors.ErrCodeInvalidGridAxis, "grid has %d cells, cap is %d", g.Size(), MaxPermutations)
	}

	return nil
}

// Cells yields one StrategyParameters per grid cell, overlaying the three
// axis values onto the base parameters (capital, sizing, and fees come from
// base unchanged).
func (g Grid) Cells(base types.StrategyParameters) func(yield func(types.StrategyParameters) bool) {
	return func(yield func(types.StrategyParameters) bool) {
		for _, takeProfit := range g.TakeProfitPcts {
			for _, stopLoss := range g.StopLossPcts {
				for _, hold := range g.HoldPeriods {
					cell := base
					cell.TakeProfitPct = takeProfit
					cell.StopLossPct = stopLoss
					cell.MaxHoldPeriods = hold

					if !yield(cell) {
						return
					}
				}
			}
		}
	}
}
