package scenario

import (
	"context"
	"sort"

	"github.com/quantfold/pickback/internal/backtest"
	"github.com/quantfold/pickback/internal/datasource"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Comparator runs the same pick universe through multiple configurations.
// Scenario and algorithm runs are independent of one another, so they fan
// out across a bounded worker group; each run keeps its own capital fold.
type Comparator struct {
	engine      *backtest.Engine
	picks       datasource.PickSource
	log         *logger.Logger
	parallelism int
}

// NewComparator wires a comparator. parallelism <= 0 falls back to serial
// execution.
func NewComparator(engine *backtest.Engine, picks datasource.PickSource, log *logger.Logger, parallelism int) *Comparator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if parallelism <= 0 {
		parallelism = 1
	}

	return &Comparator{
		engine:      engine,
		picks:       picks,
		log:         log,
		parallelism: parallelism,
	}
}

// CompareScenarios runs every preset over the same pick universe and ranks
// them by total return descending.
func (c *Comparator) CompareScenarios(ctx context.Context, filter types.PickFilter) ([]types.ScenarioComparison, error) {
	picks, err := c.picks.GetPicks(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to load picks", err)
	}

	menu := Presets()
	comparisons := make([]types.ScenarioComparison, len(menu))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.parallelism)

	for i, preset := range menu {
		group.Go(func() error {
			summary, err := c.engine.Run(groupCtx, picks, preset.Params)
			if err != nil {
				return err
			}

			comparisons[i] = types.ScenarioComparison{
				ScenarioKey: preset.Key,
				Name:        preset.Name,
				Params:      preset.Params,
				Summary:     summary,
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	rankByReturn(comparisons)

	c.log.Info("scenario comparison complete",
		zap.Int("scenarios", len(comparisons)),
		zap.Int("picks", len(picks)),
	)

	return comparisons, nil
}

// CompareAlgorithms fixes one scenario's exit rules and varies the algorithm
// filter instead, isolating signal quality from exit-policy quality. Results
// are ranked by total return descending.
func (c *Comparator) CompareAlgorithms(ctx context.Context, scenarioKey string) ([]types.ScenarioComparison, error) {
	preset, err := PresetByKey(scenarioKey)
	if err != nil {
		return nil, err
	}

	algorithms, err := c.picks.Algorithms(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list algorithms", err)
	}

	comparisons := make([]types.ScenarioComparison, len(algorithms))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.parallelism)

	for i, algorithm := range algorithms {
		group.Go(func() error {
			picks, err := c.picks.GetPicks(groupCtx, types.PickFilter{AlgorithmName: algorithm})
			if err != nil {
				return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load picks for algorithm %s", algorithm)
			}

			summary, err := c.engine.Run(groupCtx, picks, preset.Params)
			if err != nil {
				return err
			}

			comparisons[i] = types.ScenarioComparison{
				ScenarioKey: algorithm,
				Name:        algorithm,
				Params:      preset.Params,
				Summary:     summary,
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	rankByReturn(comparisons)

	return comparisons, nil
}

// rankByReturn sorts comparisons by total return descending, stably so equal
// returns keep their menu order.
func rankByReturn(comparisons []types.ScenarioComparison) {
	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Summary.TotalReturnPct > comparisons[j].Summary.TotalReturnPct
	})
}
