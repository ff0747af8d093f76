package datasource

import (
	"context"
	"sort"
	"time"

	"github.com/quantfold/pickback/internal/types"
)

// MemorySource is an in-memory PriceSource and PickSource. It backs tests
// and library callers that already hold their data; it is not safe for
// concurrent mutation, but reads are safe once loading is done.
type MemorySource struct {
	bars  map[string][]types.PriceBar
	picks []types.Pick
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		bars: map[string][]types.PriceBar{},
	}
}

// AddBars loads bars, keeping each instrument's series ascending by date.
func (m *MemorySource) AddBars(bars ...types.PriceBar) {
	for _, bar := range bars {
		m.bars[bar.InstrumentID] = append(m.bars[bar.InstrumentID], bar)
	}

	for instrument := range m.bars {
		series := m.bars[instrument]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
	}
}

// AddPicks loads picks.
func (m *MemorySource) AddPicks(picks ...types.Pick) {
	m.picks = append(m.picks, picks...)
}

// GetPricePath implements PriceSource.
func (m *MemorySource) GetPricePath(ctx context.Context, instrumentID string, from time.Time, limit int) ([]types.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var path []types.PriceBar

	for _, bar := range m.bars[instrumentID] {
		if bar.Date.Before(from) {
			continue
		}

		path = append(path, bar)
		if limit > 0 && len(path) >= limit {
			break
		}
	}

	return path, nil
}

// GetPriceHistory implements PriceSource.
func (m *MemorySource) GetPriceHistory(ctx context.Context, instrumentID string, limit int) ([]types.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series := m.bars[instrumentID]
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}

	history := make([]types.PriceBar, len(series))
	copy(history, series)

	return history, nil
}

// Instruments implements PriceSource.
func (m *MemorySource) Instruments(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instruments := make([]string, 0, len(m.bars))
	for instrument := range m.bars {
		instruments = append(instruments, instrument)
	}

	sort.Strings(instruments)

	return instruments, nil
}

// GetPicks implements PickSource, returning picks ordered by
// (pick_date ASC, instrument_id ASC).
func (m *MemorySource) GetPicks(ctx context.Context, filter types.PickFilter) ([]types.Pick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var picks []types.Pick

	for _, pick := range m.picks {
		if filter.AlgorithmName != "" && pick.AlgorithmName != filter.AlgorithmName {
			continue
		}

		if filter.Direction != "" && pick.Direction != filter.Direction {
			continue
		}

		picks = append(picks, pick)
	}

	sort.SliceStable(picks, func(i, j int) bool {
		if !picks[i].PickDate.Equal(picks[j].PickDate) {
			return picks[i].PickDate.Before(picks[j].PickDate)
		}

		return picks[i].InstrumentID < picks[j].InstrumentID
	})

	return picks, nil
}

// Algorithms implements PickSource.
func (m *MemorySource) Algorithms(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}

	var algorithms []string

	for _, pick := range m.picks {
		if _, ok := seen[pick.AlgorithmName]; ok {
			continue
		}

		seen[pick.AlgorithmName] = struct{}{}
		algorithms = append(algorithms, pick.AlgorithmName)
	}

	sort.Strings(algorithms)

	return algorithms, nil
}
