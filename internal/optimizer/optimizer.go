package optimizer

import (
	"context"
	"sync"

	"github.com/quantfold/pickback/internal/backtest"
	"github.com/quantfold/pickback/internal/datasource"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Optimizer evaluates backtest runs across parameter grids. Grid cells are
// independent runs, so they execute on a bounded worker group; results are
// reduced in cell order, which keeps best-cell tie-breaking deterministic.
type Optimizer struct {
	engine      *backtest.Engine
	picks       datasource.PickSource
	log         *logger.Logger
	parallelism int

	mu       sync.Mutex
	progress func(done, total int)
}

// NewOptimizer wires an optimizer. parallelism <= 0 falls back to serial
// execution.
func NewOptimizer(engine *backtest.Engine, picks datasource.PickSource, log *logger.Logger, parallelism int) *Optimizer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if parallelism <= 0 {
		parallelism = 1
	}

	return &Optimizer{
		engine:      engine,
		picks:       picks,
		log:         log,
		parallelism: parallelism,
	}
}

// SetProgress installs a callback invoked after every evaluated cell.
func (o *Optimizer) SetProgress(fn func(done, total int)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = fn
}

// OptimizeAlgorithm grid-searches one algorithm's picks and classifies the
// outcome against the default parameters.
func (o *Optimizer) OptimizeAlgorithm(ctx context.Context, algorithm string, grid Grid, base types.StrategyParameters) (types.OptimizationResult, error) {
	if err := grid.Validate(); err != nil {
		return types.OptimizationResult{}, err
	}

	picks, err := o.picks.GetPicks(ctx, types.PickFilter{AlgorithmName: algorithm})
	if err != nil {
		return types.OptimizationResult{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load picks for algorithm %s", algorithm)
	}

	entries, err := o.evaluateGrid(ctx, picks, grid, base)
	if err != nil {
		return types.OptimizationResult{}, err
	}

	defaultRun, err := o.engine.Run(ctx, picks, base)
	if err != nil {
		return types.OptimizationResult{}, err
	}

	best := entries[0]
	profitable := 0

	for _, entry := range entries {
		if entry.TotalReturnPct > best.TotalReturnPct {
			best = entry
		}

		if entry.TotalReturnPct > 0 {
			profitable++
		}
	}

	result := types.OptimizationResult{
		AlgorithmName:          algorithm,
		BestParams:             best.Params,
		BestReturnPct:          best.TotalReturnPct,
		DefaultReturnPct:       defaultRun.TotalReturnPct,
		ProfitableCombinations: profitable,
		TestedCombinations:     len(entries),
		Verdict:                classify(best.TotalReturnPct, defaultRun.TotalReturnPct),
	}

	o.log.Info("grid search complete",
		zap.String("algorithm", algorithm),
		zap.Int("tested", result.TestedCombinations),
		zap.Int("profitable", result.ProfitableCombinations),
		zap.Float64("best_return_pct", result.BestReturnPct),
		zap.String("verdict", string(result.Verdict)),
	)

	return result, nil
}

// OptimizeAll runs the grid search for every known algorithm, in the order
// the pick source lists them.
func (o *Optimizer) OptimizeAll(ctx context.Context, grid Grid, base types.StrategyParameters) ([]types.OptimizationResult, error) {
	algorithms, err := o.picks.Algorithms(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list algorithms", err)
	}

	results := make([]types.OptimizationResult, 0, len(algorithms))

	for _, algorithm := range algorithms {
		result, err := o.OptimizeAlgorithm(ctx, algorithm, grid, base)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, nil
}

// evaluateGrid backtests every cell and returns one entry per cell in cell
// order. Cells run concurrently; each run owns its capital fold, so no state
// is shared beyond the read-only picks and price series.
func (o *Optimizer) evaluateGrid(ctx context.Context, picks []types.Pick, grid Grid, base types.StrategyParameters) ([]types.ScanEntry, error) {
	cells := make([]types.StrategyParameters, 0, grid.Size())
	for cell := range grid.Cells(base) {
		cells = append(cells, cell)
	}

	if len(cells) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGrid, "grid produced no cells")
	}

	entries := make([]types.ScanEntry, len(cells))
	done := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.parallelism)

	for i, cell := range cells {
		group.Go(func() error {
			summary, err := o.engine.Run(groupCtx, picks, cell)
			if err != nil {
				return err
			}

			entries[i] = types.ScanEntry{
				Params:         cell,
				TotalReturnPct: summary.TotalReturnPct,
				TotalTrades:    summary.TotalTrades,
				WinRate:        summary.WinRate,
			}

			o.mu.Lock()
			done++

			if o.progress != nil {
				o.progress(done, len(cells))
			}
			o.mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}

// classify compares the grid's best return against the default-parameter
// baseline.
func classify(bestReturnPct, defaultReturnPct float64) types.OptimizationVerdict {
	switch {
	case bestReturnPct > 0:
		return types.VerdictProfitableParamsExist
	case bestReturnPct > defaultReturnPct:
		return types.VerdictImprovableButStillLosing
	default:
		return types.VerdictNoProfitableParamsFound
	}
}
