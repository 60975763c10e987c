// Package httpapi exposes the search pipeline over HTTP: one endpoint for
// the general path, one for the strict high-risk path, plus history,
// health, and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/assemble"
	"github.com/Aman3189/soriva-backend-sub011/internal/history"
	"github.com/Aman3189/soriva-backend-sub011/internal/orchestrator"
	"github.com/Aman3189/soriva-backend-sub011/internal/strict"
)

// Pipeline is the orchestrator surface the API needs; narrowed for tests.
type Pipeline interface {
	Search(ctx context.Context, query string, opts orchestrator.Options) (*assemble.SearchResult, error)
	StrictSearch(ctx context.Context, query, category string) (*strict.Result, error)
}

// SearchRequest is the POST /api/v1/search body.
type SearchRequest struct {
	Query    string `json:"query"`
	WebFetch *bool  `json:"web_fetch,omitempty"`
}

// StrictRequest is the POST /api/v1/strict body. Category is optional; it is
// classified from the query when absent.
type StrictRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Server holds the HTTP handlers. History may be nil.
type Server struct {
	pipeline Pipeline
	store    *history.Store
	health   http.Handler
	defaults orchestrator.Options
	logger   *zap.Logger
}

func NewServer(pipeline Pipeline, store *history.Store, healthHandler http.Handler, defaults orchestrator.Options, logger *zap.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		store:    store,
		health:   healthHandler,
		defaults: defaults,
		logger:   logger,
	}
}

// Routes builds the mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/strict", s.handleStrict)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		mux.Handle("GET /healthz", s.health)
	}
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	opts := s.defaults
	if req.WebFetch != nil {
		opts.EnableWebFetch = *req.WebFetch
	}

	res, err := s.pipeline.Search(r.Context(), req.Query, opts)
	switch {
	case errors.Is(err, orchestrator.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("search handler failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	s.store.Record(res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStrict(w http.ResponseWriter, r *http.Request) {
	var req StrictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	res, err := s.pipeline.StrictSearch(r.Context(), req.Query, req.Category)
	switch {
	case errors.Is(err, orchestrator.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case errors.Is(err, orchestrator.ErrStrictUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("strict handler failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	// The strict path reports its own failures in-band; a fatal grounded
	// failure is 502, not 500, because the upstream answer service is at
	// fault.
	if !res.Success {
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "history disabled"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
