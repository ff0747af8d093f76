package optimizer

import (
	"context"
	"sort"

	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
)

// Top-N clamping bounds for permutation scans.
const (
	MinTopResults = 5
	MaxTopResults = 100

	bottomResults = 5
)

// PermutationScan evaluates the full grid across all picks (or a single
// algorithm when algorithm is non-empty) and reports the extremes plus the
// fraction of profitable combinations. That fraction is a robustness signal
// for the whole strategy universe, independent of any single best cell.
func (o *Optimizer) PermutationScan(ctx context.Context, algorithm string, grid Grid, base types.StrategyParameters, topN int) (types.ScanResult, error) {
	if err := grid.Validate(); err != nil {
		return types.ScanResult{}, err
	}

	topN = clampTopN(topN)

	picks, err := o.picks.GetPicks(ctx, types.PickFilter{AlgorithmName: algorithm})
	if err != nil {
		return types.ScanResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to load picks", err)
	}

	entries, err := o.evaluateGrid(ctx, picks, grid, base)
	if err != nil {
		return types.ScanResult{}, err
	}

	profitable := 0
	for _, entry := range entries {
		if entry.TotalReturnPct > 0 {
			profitable++
		}
	}

	// Stable sort on a copy in cell order keeps equal returns in grid order.
	ranked := make([]types.ScanEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalReturnPct > ranked[j].TotalReturnPct
	})

	if topN > len(ranked) {
		topN = len(ranked)
	}

	bottomN := bottomResults
	if bottomN > len(ranked) {
		bottomN = len(ranked)
	}

	top := make([]types.ScanEntry, topN)
	copy(top, ranked[:topN])

	// Bottom entries are reported worst first.
	bottom := make([]types.ScanEntry, 0, bottomN)
	for i := len(ranked) - 1; i >= len(ranked)-bottomN; i-- {
		bottom = append(bottom, ranked[i])
	}

	return types.ScanResult{
		AlgorithmName:      algorithm,
		Top:                top,
		Bottom:             bottom,
		TestedCombinations: len(entries),
		ProfitableFraction: float64(profitable) / float64(len(entries)),
	}, nil
}

func clampTopN(topN int) int {
	if topN < MinTopResults {
		return MinTopResults
	}

	if topN > MaxTopResults {
		return MaxTopResults
	}

	return topN
}
