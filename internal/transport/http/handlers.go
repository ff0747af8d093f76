package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quantfold/pickback/internal/indicator"
	"github.com/quantfold/pickback/internal/optimizer"
	"github.com/quantfold/pickback/internal/scenario"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
)

// snapshotHistoryBars is how much history the snapshot endpoint requests; it
// comfortably covers the 200-bar SMA plus warmup.
const snapshotHistoryBars = 250

type runRequest struct {
	AlgorithmName string                    `json:"algorithm_name"`
	Direction     string                    `json:"direction" validate:"omitempty,oneof=LONG SHORT"`
	Params        *types.StrategyParameters `json:"params"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	params := types.DefaultParameters()
	if req.Params != nil {
		params = *req.Params
		if err := params.Validate(); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy parameters", err))

			return
		}
	}

	picks, err := s.picks.GetPicks(r.Context(), types.PickFilter{
		AlgorithmName: req.AlgorithmName,
		Direction:     types.Direction(req.Direction),
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.engine.Run(r.Context(), picks, params)
	if err != nil {
		s.writeError(w, err)

		return
	}

	result.Timestamp = time.Now().UTC()

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, scenario.Presets())
}

type compareScenariosRequest struct {
	AlgorithmName string `json:"algorithm_name"`
	Direction     string `json:"direction" validate:"omitempty,oneof=LONG SHORT"`
}

func (s *Server) handleCompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req compareScenariosRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	comparisons, err := s.comparator.CompareScenarios(r.Context(), types.PickFilter{
		AlgorithmName: req.AlgorithmName,
		Direction:     types.Direction(req.Direction),
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, comparisons)
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algorithms, err := s.picks.Algorithms(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, algorithms)
}

type compareAlgorithmsRequest struct {
	ScenarioKey string `json:"scenario_key"`
}

func (s *Server) handleCompareAlgorithms(w http.ResponseWriter, r *http.Request) {
	var req compareAlgorithmsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	if req.ScenarioKey == "" {
		req.ScenarioKey = scenario.DefaultScenarioKey
	}

	comparisons, err := s.comparator.CompareAlgorithms(r.Context(), req.ScenarioKey)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, comparisons)
}

type optimizeRequest struct {
	AlgorithmName string                    `json:"algorithm_name"`
	Grid          *optimizer.Grid           `json:"grid"`
	Params        *types.StrategyParameters `json:"params"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	grid := optimizer.DefaultGrid()
	if req.Grid != nil {
		grid = *req.Grid
	}

	base := types.DefaultParameters()
	if req.Params != nil {
		base = *req.Params
	}

	if req.AlgorithmName == "" {
		results, err := s.optimizer.OptimizeAll(r.Context(), grid, base)
		if err != nil {
			s.writeError(w, err)

			return
		}

		s.writeJSON(w, http.StatusOK, results)

		return
	}

	result, err := s.optimizer.OptimizeAlgorithm(r.Context(), req.AlgorithmName, grid, base)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type scanRequest struct {
	AlgorithmName string                    `json:"algorithm_name"`
	TopN          int                       `json:"top_n"`
	Grid          *optimizer.Grid           `json:"grid"`
	Params        *types.StrategyParameters `json:"params"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	grid := optimizer.ScanGrid()
	if req.Grid != nil {
		grid = *req.Grid
	}

	base := types.DefaultParameters()
	if req.Params != nil {
		base = *req.Params
	}

	result, err := s.optimizer.PermutationScan(r.Context(), req.AlgorithmName, grid, base, req.TopN)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"]

	bars, err := s.prices.GetPriceHistory(r.Context(), instrument, snapshotHistoryBars)
	if err != nil {
		s.writeError(w, err)

		return
	}

	snapshot, err := indicator.RequireSnapshot(instrument, bars)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}
