// Command backtest runs pick backtests, scenario comparisons, grid searches,
// and technical snapshots against a DuckDB database of price bars and picks,
// and can serve the same operations over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/quantfold/pickback/internal/backtest"
	"github.com/quantfold/pickback/internal/datasource"
	"github.com/quantfold/pickback/internal/indicator"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/optimizer"
	"github.com/quantfold/pickback/internal/params"
	"github.com/quantfold/pickback/internal/scenario"
	transport "github.com/quantfold/pickback/internal/transport/http"
	"github.com/quantfold/pickback/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// components bundles everything a subcommand needs, wired around one store.
type components struct {
	store      *datasource.DuckDBStore
	engine     *backtest.Engine
	comparator *scenario.Comparator
	optimizer  *optimizer.Optimizer
	log        *logger.Logger
}

func setup(cmd *cli.Command) (*components, error) {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	store, err := datasource.NewDuckDBStore(cmd.String("db"), appLogger)
	if err != nil {
		return nil, err
	}

	parallelism := int(cmd.Int("parallelism"))
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	engine := backtest.NewEngine(store, appLogger)

	return &components{
		store:      store,
		engine:     engine,
		comparator: scenario.NewComparator(engine, store, appLogger, parallelism),
		optimizer:  optimizer.NewOptimizer(engine, store, appLogger, parallelism),
		log:        appLogger,
	}, nil
}

// loadParams merges a YAML parameter file over the defaults when one is
// given.
func loadParams(cmd *cli.Command) (types.StrategyParameters, error) {
	path := cmd.String("params")
	if path == "" {
		return types.DefaultParameters(), nil
	}

	return params.LoadYAML(path)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	strategyParams, err := loadParams(cmd)
	if err != nil {
		return err
	}

	picks, err := c.store.GetPicks(ctx, types.PickFilter{
		AlgorithmName: cmd.String("algorithm"),
		Direction:     types.Direction(cmd.String("direction")),
	})
	if err != nil {
		return err
	}

	result, err := c.engine.Run(ctx, picks, strategyParams)
	if err != nil {
		return err
	}

	// Engine runs are unstamped so repeat runs compare clean; the CLI is
	// where wall-clock time enters the record.
	result.Timestamp = time.Now().UTC()

	export := cmd.String("export")

	if cmd.Bool("save") || export != "" {
		if _, err := c.store.SaveResult(ctx, &result); err != nil {
			return err
		}
	}

	if export != "" {
		if err := c.store.ExportTrades(ctx, result.RunID, export); err != nil {
			return err
		}
	}

	if output := cmd.String("output"); output != "" {
		if err := backtest.WriteResultYAML(output, result); err != nil {
			return err
		}
	}

	return printJSON(result)
}

func scenariosAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	comparisons, err := c.comparator.CompareScenarios(ctx, types.PickFilter{
		AlgorithmName: cmd.String("algorithm"),
		Direction:     types.Direction(cmd.String("direction")),
	})
	if err != nil {
		return err
	}

	return printJSON(comparisons)
}

func algorithmsAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	comparisons, err := c.comparator.CompareAlgorithms(ctx, cmd.String("scenario"))
	if err != nil {
		return err
	}

	return printJSON(comparisons)
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	base, err := loadParams(cmd)
	if err != nil {
		return err
	}

	grid := optimizer.DefaultGrid()
	attachProgress(c.optimizer, "Optimizing")

	if algorithm := cmd.String("algorithm"); algorithm != "" {
		result, err := c.optimizer.OptimizeAlgorithm(ctx, algorithm, grid, base)
		if err != nil {
			return err
		}

		return printJSON(result)
	}

	results, err := c.optimizer.OptimizeAll(ctx, grid, base)
	if err != nil {
		return err
	}

	return printJSON(results)
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	base, err := loadParams(cmd)
	if err != nil {
		return err
	}

	attachProgress(c.optimizer, "Scanning")

	result, err := c.optimizer.PermutationScan(ctx, cmd.String("algorithm"), optimizer.ScanGrid(), base, int(cmd.Int("top")))
	if err != nil {
		return err
	}

	return printJSON(result)
}

func snapshotAction(ctx context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	instrument := cmd.StringArg("instrument")
	if instrument == "" {
		return fmt.Errorf("instrument argument is required")
	}

	bars, err := c.store.GetPriceHistory(ctx, instrument, int(cmd.Int("bars")))
	if err != nil {
		return err
	}

	snapshot, err := indicator.RequireSnapshot(instrument, bars)
	if err != nil {
		return err
	}

	return printJSON(snapshot)
}

func loadAction(_ context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	if path := cmd.String("prices"); path != "" {
		if err := c.store.LoadPriceCSV(path); err != nil {
			return err
		}
	}

	if path := cmd.String("picks"); path != "" {
		if err := c.store.LoadPickCSV(path); err != nil {
			return err
		}
	}

	return nil
}

func serveAction(_ context.Context, cmd *cli.Command) error {
	c, err := setup(cmd)
	if err != nil {
		return err
	}
	defer c.store.Close()

	server := transport.NewServer(c.engine, c.comparator, c.optimizer, c.store, c.store, c.log)

	return server.Start(cmd.String("addr"))
}

// attachProgress wires a terminal progress bar to the optimizer's per-cell
// callback.
func attachProgress(opt *optimizer.Optimizer, description string) {
	var bar *progressbar.ProgressBar

	opt.SetProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
			)
		}

		_ = bar.Set(done)
	})
}

func main() {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the DuckDB database file",
		Value:   "pickback.db",
	}
	parallelismFlag := &cli.IntFlag{
		Name:  "parallelism",
		Usage: "Concurrent backtest runs (0 = number of CPUs)",
		Value: 0,
	}
	algorithmFlag := &cli.StringFlag{
		Name:    "algorithm",
		Aliases: []string{"a"},
		Usage:   "Restrict to picks from one algorithm",
	}
	directionFlag := &cli.StringFlag{
		Name:  "direction",
		Usage: "Restrict to LONG or SHORT picks",
	}
	paramsFlag := &cli.StringFlag{
		Name:    "params",
		Aliases: []string{"p"},
		Usage:   "YAML file with strategy parameters (partial files merge over defaults)",
	}

	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Backtest trading picks against historical price data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one backtest over the pick universe",
				Flags: []cli.Flag{
					dbFlag, parallelismFlag, algorithmFlag, directionFlag, paramsFlag,
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist the run and its trades to the database",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Export the saved run's trades to a Parquet file (implies --save)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the run summary to a YAML file",
					},
				},
				Action: runAction,
			},
			{
				Name:   "scenarios",
				Usage:  "Compare all scenario presets over the same picks",
				Flags:  []cli.Flag{dbFlag, parallelismFlag, algorithmFlag, directionFlag},
				Action: scenariosAction,
			},
			{
				Name:  "algorithms",
				Usage: "Compare algorithms under one fixed scenario",
				Flags: []cli.Flag{
					dbFlag, parallelismFlag,
					&cli.StringFlag{
						Name:  "scenario",
						Usage: "Scenario preset key",
						Value: scenario.DefaultScenarioKey,
					},
				},
				Action: algorithmsAction,
			},
			{
				Name:   "optimize",
				Usage:  "Grid-search exit parameters per algorithm",
				Flags:  []cli.Flag{dbFlag, parallelismFlag, algorithmFlag, paramsFlag},
				Action: optimizeAction,
			},
			{
				Name:  "scan",
				Usage: "Permutation-scan the dense parameter grid",
				Flags: []cli.Flag{
					dbFlag, parallelismFlag, algorithmFlag, paramsFlag,
					&cli.IntFlag{
						Name:  "top",
						Usage: "How many top combinations to report (clamped to 5..100)",
						Value: 20,
					},
				},
				Action: scanAction,
			},
			{
				Name:      "snapshot",
				Usage:     "Compute the technical snapshot for one instrument",
				Arguments: []cli.Argument{&cli.StringArg{Name: "instrument"}},
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "bars",
						Usage: "How many recent bars to analyze",
						Value: 250,
					},
				},
				Action: snapshotAction,
			},
			{
				Name:  "load",
				Usage: "Load price bars and picks from CSV files",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{Name: "prices", Usage: "CSV file of price bars"},
					&cli.StringFlag{Name: "picks", Usage: "CSV file of picks"},
				},
				Action: loadAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema for strategy parameters",
				Action: func(_ context.Context, _ *cli.Command) error {
					schema, err := params.Schema()
					if err != nil {
						return err
					}

					fmt.Println(schema)

					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the JSON API",
				Flags: []cli.Flag{
					dbFlag, parallelismFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
				},
				Action: serveAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
