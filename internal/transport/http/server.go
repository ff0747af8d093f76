// Package http exposes the backtest engine over a small JSON API. The
// transport is a thin shell: handlers decode and validate requests, delegate
// to the engine, comparator, and optimizer, and encode their results
// unchanged.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/quantfold/pickback/internal/backtest"
	"github.com/quantfold/pickback/internal/datasource"
	"github.com/quantfold/pickback/internal/logger"
	"github.com/quantfold/pickback/internal/optimizer"
	"github.com/quantfold/pickback/internal/scenario"
	"github.com/quantfold/pickback/pkg/errors"
	"go.uber.org/zap"
)

// Server wires the JSON API over the analysis components.
type Server struct {
	engine     *backtest.Engine
	comparator *scenario.Comparator
	optimizer  *optimizer.Optimizer
	prices     datasource.PriceSource
	picks      datasource.PickSource
	log        *logger.Logger
	validate   *validator.Validate

	httpServer *http.Server
}

// NewServer builds a server around already-wired components.
func NewServer(
	engine *backtest.Engine,
	comparator *scenario.Comparator,
	opt *optimizer.Optimizer,
	prices datasource.PriceSource,
	picks datasource.PickSource,
	log *logger.Logger,
) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Server{
		engine:     engine,
		comparator: comparator,
		optimizer:  opt,
		prices:     prices,
		picks:      picks,
		log:        log,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router returns the configured route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/backtest/run", s.handleRun).Methods("POST")
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios/compare", s.handleCompareScenarios).Methods("POST")
	api.HandleFunc("/algorithms", s.handleListAlgorithms).Methods("GET")
	api.HandleFunc("/algorithms/compare", s.handleCompareAlgorithms).Methods("POST")
	api.HandleFunc("/optimize", s.handleOptimize).Methods("POST")
	api.HandleFunc("/scan", s.handleScan).Methods("POST")
	api.HandleFunc("/snapshot/{instrument}", s.handleSnapshot).Methods("GET")

	return router
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server listening", zap.String("addr", addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the wire shape of every failure.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.IsInsufficientDataError(err) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    int(errors.ErrCodeInsufficientData),
			Message: err.Error(),
		})

		return
	}

	status := http.StatusInternalServerError
	code := int(errors.ErrCodeUnknown)

	var appErr *errors.Error
	if errors.As(err, &appErr) {
		code = int(appErr.Code)
		status = statusForCode(appErr.Code)
	}

	s.writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// statusForCode maps error categories to HTTP statuses by their hundreds
// band.
func statusForCode(code errors.ErrorCode) int {
	switch {
	case code >= 100 && code < 200:
		return http.StatusBadRequest
	case code == errors.ErrCodeDataNotFound, code == errors.ErrCodeUnknownScenario:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// An empty body is allowed; dst keeps its zero or pre-filled values.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "failed to decode request body", err)
	}

	if err := s.validate.Struct(dst); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "request validation failed", err)
	}

	return nil
}
