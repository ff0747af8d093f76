package datasource

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBStore serves price bars and picks out of a DuckDB database and
// persists finished backtest runs. It implements PriceSource, PickSource,
// and ResultSink.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) a DuckDB database at path. An empty path
// opens an in-memory database.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb database", err)
	}

	store := &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := store.createTables(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

// Close releases the underlying database handle.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

func (s *DuckDBStore) createTables() error {
	// Squirrel has no DDL support, so schema bootstrap is raw SQL.
	schema := `
		CREATE TABLE IF NOT EXISTS price_bars (
			instrument_id VARCHAR NOT NULL,
			date TIMESTAMP NOT NULL,
			open DOUBLE NOT NULL,
			high DOUBLE NOT NULL,
			low DOUBLE NOT NULL,
			close DOUBLE NOT NULL,
			volume DOUBLE NOT NULL,
			PRIMARY KEY (instrument_id, date)
		);

		CREATE TABLE IF NOT EXISTS picks (
			instrument_id VARCHAR NOT NULL,
			algorithm_name VARCHAR NOT NULL,
			pick_date TIMESTAMP NOT NULL,
			entry_price DOUBLE NOT NULL,
			direction VARCHAR NOT NULL,
			score DOUBLE,
			rating VARCHAR,
			risk_level VARCHAR,
			timeframe_hint VARCHAR,
			PRIMARY KEY (instrument_id, algorithm_name, pick_date)
		);

		CREATE TABLE IF NOT EXISTS backtest_runs (
			run_id VARCHAR PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			params JSON NOT NULL,
			result JSON NOT NULL
		);

		CREATE TABLE IF NOT EXISTS backtest_trades (
			run_id VARCHAR NOT NULL,
			instrument_id VARCHAR NOT NULL,
			algorithm_name VARCHAR NOT NULL,
			direction VARCHAR NOT NULL,
			entry_date TIMESTAMP NOT NULL,
			entry_price DOUBLE NOT NULL,
			exit_date TIMESTAMP NOT NULL,
			exit_price DOUBLE NOT NULL,
			exit_reason VARCHAR NOT NULL,
			hold_periods INTEGER NOT NULL,
			position_size DOUBLE NOT NULL,
			gross_profit DOUBLE NOT NULL,
			fees_paid DOUBLE NOT NULL,
			net_profit DOUBLE NOT NULL,
			return_pct DOUBLE NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrCodeSchemaFailed, "failed to create tables", err)
	}

	return nil
}

// LoadPriceCSV bulk-loads price bars from a CSV file with columns matching
// the price_bars table. Existing rows for the same (instrument, date) are
// replaced.
func (s *DuckDBStore) LoadPriceCSV(path string) error {
	s.logger.Debug("loading price bars from csv", zap.String("path", path))

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO price_bars
		SELECT instrument_id, date, open, high, low, close, volume
		FROM read_csv_auto('%s', header = true);
	`, escapeSQLString(path))

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load price bars from %s", path)
	}

	return nil
}

// LoadPickCSV bulk-loads picks from a CSV file with columns matching the
// picks table.
func (s *DuckDBStore) LoadPickCSV(path string) error {
	s.logger.Debug("loading picks from csv", zap.String("path", path))

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO picks
		SELECT instrument_id, algorithm_name, pick_date, entry_price, direction, score, rating, risk_level, timeframe_hint
		FROM read_csv_auto('%s', header = true);
	`, escapeSQLString(path))

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load picks from %s", path)
	}

	return nil
}

// GetPricePath implements PriceSource.
func (s *DuckDBStore) GetPricePath(ctx context.Context, instrumentID string, from time.Time, limit int) ([]types.PriceBar, error) {
	builder := s.sq.
		Select("instrument_id", "date", "open", "high", "low", "close", "volume").
		From("price_bars").
		Where(squirrel.Eq{"instrument_id": instrumentID}).
		Where(squirrel.GtOrEq{"date": from}).
		OrderBy("date ASC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price path query", err)
	}

	return s.queryBars(ctx, query, args...)
}

// GetPriceHistory implements PriceSource, returning the most recent limit
// bars in ascending order. A limit of zero or less returns the full history.
func (s *DuckDBStore) GetPriceHistory(ctx context.Context, instrumentID string, limit int) ([]types.PriceBar, error) {
	if limit <= 0 {
		query, args, err := s.sq.
			Select("instrument_id", "date", "open", "high", "low", "close", "volume").
			From("price_bars").
			Where(squirrel.Eq{"instrument_id": instrumentID}).
			OrderBy("date ASC").
			ToSql()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price history query", err)
		}

		return s.queryBars(ctx, query, args...)
	}

	// The inner query grabs the newest rows, the outer one restores
	// ascending order for the indicator pipeline.
	query := `
		SELECT instrument_id, date, open, high, low, close, volume
		FROM (
			SELECT instrument_id, date, open, high, low, close, volume
			FROM price_bars
			WHERE instrument_id = $1
			ORDER BY date DESC
			LIMIT $2
		)
		ORDER BY date ASC
	`

	return s.queryBars(ctx, query, instrumentID, limit)
}

// Instruments implements PriceSource.
func (s *DuckDBStore) Instruments(ctx context.Context) ([]string, error) {
	query, args, err := s.sq.
		Select("DISTINCT instrument_id").
		From("price_bars").
		OrderBy("instrument_id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build instruments query", err)
	}

	return s.queryStrings(ctx, query, args...)
}

// GetPicks implements PickSource, returning picks ordered by
// (pick_date ASC, instrument_id ASC).
func (s *DuckDBStore) GetPicks(ctx context.Context, filter types.PickFilter) ([]types.Pick, error) {
	builder := s.sq.
		Select("instrument_id", "algorithm_name", "pick_date", "entry_price", "direction", "score", "rating", "risk_level", "timeframe_hint").
		From("picks").
		OrderBy("pick_date ASC", "instrument_id ASC")

	if filter.AlgorithmName != "" {
		builder = builder.Where(squirrel.Eq{"algorithm_name": filter.AlgorithmName})
	}

	if filter.Direction != "" {
		builder = builder.Where(squirrel.Eq{"direction": string(filter.Direction)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build picks query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query picks", err)
	}
	defer rows.Close()

	var picks []types.Pick

	for rows.Next() {
		var (
			pick      types.Pick
			direction string
			score     sql.NullFloat64
			rating    sql.NullString
			riskLevel sql.NullString
			timeframe sql.NullString
		)

		err := rows.Scan(&pick.InstrumentID, &pick.AlgorithmName, &pick.PickDate, &pick.EntryPrice, &direction, &score, &rating, &riskLevel, &timeframe)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan pick row", err)
		}

		pick.Direction = types.Direction(direction)
		pick.Score = score.Float64
		pick.Rating = rating.String
		pick.RiskLevel = types.RiskLevel(riskLevel.String)
		pick.TimeframeHint = timeframe.String

		picks = append(picks, pick)
	}

	return picks, rows.Err()
}

// Algorithms implements PickSource.
func (s *DuckDBStore) Algorithms(ctx context.Context) ([]string, error) {
	query, args, err := s.sq.
		Select("DISTINCT algorithm_name").
		From("picks").
		OrderBy("algorithm_name ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build algorithms query", err)
	}

	return s.queryStrings(ctx, query, args...)
}

// SaveResult persists a finished run and its trades, assigning and returning
// a fresh run id. The result's RunID is set as a side effect, and a result
// that carries no timestamp is stamped with the save time. Engine runs are
// deterministic; wall-clock time only enters here.
func (s *DuckDBStore) SaveResult(ctx context.Context, result *types.BacktestResult) (string, error) {
	runID := uuid.New().String()
	result.RunID = runID

	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}

	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to marshal params", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to marshal result", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	runQuery, runArgs, err := s.sq.
		Insert("backtest_runs").
		Columns("run_id", "created_at", "params", "result").
		Values(runID, result.Timestamp, string(paramsJSON), string(resultJSON)).
		ToSql()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to build run insert", err)
	}

	if _, err := tx.ExecContext(ctx, runQuery, runArgs...); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert run", err)
	}

	for _, trade := range result.Trades {
		tradeQuery, tradeArgs, err := s.sq.
			Insert("backtest_trades").
			Columns(
				"run_id", "instrument_id", "algorithm_name", "direction",
				"entry_date", "entry_price", "exit_date", "exit_price", "exit_reason",
				"hold_periods", "position_size", "gross_profit", "fees_paid", "net_profit", "return_pct",
			).
			Values(
				runID, trade.InstrumentID, trade.AlgorithmName, string(trade.Direction),
				trade.EntryDate, trade.EntryPrice, trade.ExitDate, trade.ExitPrice, string(trade.ExitReason),
				trade.HoldPeriods, trade.PositionSize, trade.GrossProfit, trade.FeesPaid, trade.NetProfit, trade.ReturnPct,
			).
			ToSql()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to build trade insert", err)
		}

		if _, err := tx.ExecContext(ctx, tradeQuery, tradeArgs...); err != nil {
			return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert trade", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to commit run", err)
	}

	s.logger.Info("backtest run persisted",
		zap.String("run_id", runID),
		zap.Int("trades", len(result.Trades)),
	)

	return runID, nil
}

// ExportTrades copies one run's trades to a Parquet file.
func (s *DuckDBStore) ExportTrades(ctx context.Context, runID string, path string) error {
	existsQuery, existsArgs, err := s.sq.
		Select("COUNT(*)").
		From("backtest_runs").
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build run lookup", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&count); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to look up run", err)
	}

	if count == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "run %s not found", runID)
	}

	query := fmt.Sprintf(`
		COPY (
			SELECT * FROM backtest_trades
			WHERE run_id = '%s'
			ORDER BY entry_date ASC, instrument_id ASC
		) TO '%s' (FORMAT PARQUET);
	`, escapeSQLString(runID), escapeSQLString(path))

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeResultExportFailed, err, "failed to export trades for run %s", runID)
	}

	return nil
}

func (s *DuckDBStore) queryBars(ctx context.Context, query string, args ...interface{}) ([]types.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query price bars", err)
	}
	defer rows.Close()

	var bars []types.PriceBar

	for rows.Next() {
		var bar types.PriceBar

		err := rows.Scan(&bar.InstrumentID, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan price bar row", err)
		}

		bars = append(bars, bar)
	}

	return bars, rows.Err()
}

func (s *DuckDBStore) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", err)
	}
	defer rows.Close()

	var values []string

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		values = append(values, value)
	}

	return values, rows.Err()
}

// escapeSQLString doubles single quotes for values interpolated into DuckDB
// statements that cannot take placeholders (COPY, read_csv_auto).
func escapeSQLString(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
