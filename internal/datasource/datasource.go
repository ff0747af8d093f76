// Package datasource supplies the engine's read-only collaborators: ordered
// price bars per instrument and the pick universe produced by the external
// signal generator. A DuckDB-backed implementation serves persistent data and
// acts as the optional result sink; an in-memory implementation backs tests
// and pure-library use.
package datasource

import (
	"context"
	"time"

	"github.com/quantfold/pickback/internal/types"
)

// PriceSource provides ordered OHLCV bars per instrument. Implementations
// must return bars ascending by date; gaps are allowed.
type PriceSource interface {
	// GetPricePath returns up to limit bars for the instrument with dates at
	// or after from, ascending. limit <= 0 means no cap.
	GetPricePath(ctx context.Context, instrumentID string, from time.Time, limit int) ([]types.PriceBar, error)

	// GetPriceHistory returns the most recent limit bars for the instrument,
	// ascending. limit <= 0 means the full history.
	GetPriceHistory(ctx context.Context, instrumentID string, limit int) ([]types.PriceBar, error)

	// Instruments lists the distinct instrument ids with price data.
	Instruments(ctx context.Context) ([]string, error)
}

// PickSource provides the pick universe. Implementations must return picks
// ordered by (pick_date ASC, instrument_id ASC).
type PickSource interface {
	// GetPicks returns picks matching the filter in deterministic order.
	GetPicks(ctx context.Context, filter types.PickFilter) ([]types.Pick, error)

	// Algorithms lists the distinct algorithm names that produced picks.
	Algorithms(ctx context.Context) ([]string, error)
}

// ResultSink persists finished backtest runs. Persistence is optional; the
// engine itself never writes.
type ResultSink interface {
	// SaveResult stores the result and its trades, returning the assigned
	// run id.
	SaveResult(ctx context.Context, result *types.BacktestResult) (string, error)
}
