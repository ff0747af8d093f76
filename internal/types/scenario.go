package types

// ScenarioDefinition is a named, immutable preset mapping to one
// StrategyParameters tuple.
type ScenarioDefinition struct {
	Key    string             `json:"scenario_key" yaml:"scenario_key"`
	Name   string             `json:"name" yaml:"name"`
	Params StrategyParameters `json:"params" yaml:"params"`
}

// ScenarioComparison is one ranked entry of a scenario or algorithm
// comparison response.
type ScenarioComparison struct {
	ScenarioKey string             `json:"scenario_key" yaml:"scenario_key"`
	Name        string             `json:"name" yaml:"name"`
	Params      StrategyParameters `json:"params" yaml:"params"`
	Summary     BacktestResult     `json:"summary" yaml:"summary"`
}

// OptimizationVerdict classifies an algorithm after a grid search.
type OptimizationVerdict string

const (
	VerdictProfitableParamsExist    OptimizationVerdict = "PROFITABLE_PARAMS_EXIST"
	VerdictImprovableButStillLosing OptimizationVerdict = "IMPROVABLE_BUT_STILL_LOSING"
	VerdictNoProfitableParamsFound  OptimizationVerdict = "NO_PROFITABLE_PARAMS_FOUND"
)

// OptimizationResult reports the best parameter set found for one algorithm
// plus a robustness characterization of the full grid.
type OptimizationResult struct {
	AlgorithmName          string              `json:"algorithm_name" yaml:"algorithm_name"`
	BestParams             StrategyParameters  `json:"best_params" yaml:"best_params"`
	BestReturnPct          float64             `json:"best_return_pct" yaml:"best_return_pct"`
	DefaultReturnPct       float64             `json:"default_return_pct" yaml:"default_return_pct"`
	ProfitableCombinations int                 `json:"profitable_combinations" yaml:"profitable_combinations"`
	TestedCombinations     int                 `json:"tested_combinations" yaml:"tested_combinations"`
	Verdict                OptimizationVerdict `json:"verdict" yaml:"verdict"`
}

// ScanEntry is one evaluated grid cell of a permutation scan.
type ScanEntry struct {
	Params         StrategyParameters `json:"params" yaml:"params"`
	TotalReturnPct float64            `json:"total_return_pct" yaml:"total_return_pct"`
	TotalTrades    int                `json:"total_trades" yaml:"total_trades"`
	WinRate        float64            `json:"win_rate" yaml:"win_rate"`
}

// ScanResult is the outcome of a permutation scan across a parameter grid.
type ScanResult struct {
	AlgorithmName      string      `json:"algorithm_name,omitempty" yaml:"algorithm_name,omitempty"`
	Top                []ScanEntry `json:"top" yaml:"top"`
	Bottom             []ScanEntry `json:"bottom" yaml:"bottom"`
	TestedCombinations int         `json:"tested_combinations" yaml:"tested_combinations"`
	ProfitableFraction float64     `json:"profitable_fraction" yaml:"profitable_fraction"`
}
