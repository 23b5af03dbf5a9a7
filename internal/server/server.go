// Package server exposes the layout pipeline as an HTTP API.
//
// The API accepts the same inputs as the CLI and returns computed layouts as
// JSON. All endpoints are POST with JSON bodies:
//
//	POST /api/v1/layout/tree    {"tree": {...}, "options": {...}}
//	POST /api/v1/layout/flat    {"graph": {...}, "options": {...}}
//	POST /api/v1/resolve        {"existing": [...], "incoming": [...], "options": {...}}
//
// Layout endpoints respond with the pipeline result (layout, stats, cache
// info); resolve responds with the adjusted rectangles and convergence
// status. Errors are returned as {"error": {"code": ..., "message": ...}}.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canopyviz/canopy/pkg/errors"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/layout/collide"
	"github.com/canopyviz/canopy/pkg/pipeline"
)

// maxBodyBytes bounds request bodies; layouts of tens of thousands of nodes
// fit comfortably.
const maxBodyBytes = 16 << 20

// Server handles layout API requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server backed by the given runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the chi router with all routes and middleware registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout/tree", s.handleLayoutTree)
		r.Post("/layout/flat", s.handleLayoutFlat)
		r.Post("/resolve", s.handleResolve)
	})

	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// treeRequest is the body of POST /api/v1/layout/tree.
type treeRequest struct {
	Tree    *graph.Tree      `json:"tree"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleLayoutTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Tree == nil || req.Tree.ID == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "tree with a root id is required"))
		return
	}

	result, err := s.runner.LayoutTree(r.Context(), req.Tree, req.Options)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidOption, err, "layout tree"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// flatRequest is the body of POST /api/v1/layout/flat.
type flatRequest struct {
	Graph   graph.FlatGraph  `json:"graph"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleLayoutFlat(w http.ResponseWriter, r *http.Request) {
	var req flatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Graph.Nodes) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "graph with at least one node is required"))
		return
	}

	result, err := s.runner.LayoutFlat(r.Context(), req.Graph, req.Options)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidOption, err, "layout flat graph"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// resolveRequest is the body of POST /api/v1/resolve. With Incoming empty the
// whole Existing set is relaxed; otherwise Existing is frozen and only
// Incoming moves.
type resolveRequest struct {
	Existing []graph.Rect     `json:"existing"`
	Incoming []graph.Rect     `json:"incoming,omitempty"`
	Options  pipeline.Options `json:"options"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !s.decode(w, r, &req) {
		return
	}

	var result collide.Result
	if len(req.Incoming) == 0 {
		result = s.runner.ResolveAll(r.Context(), req.Existing, req.Options)
	} else {
		result = s.runner.ResolveNew(r.Context(), req.Existing, req.Incoming, req.Options)
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a JSON body into v, writing the error response itself when the
// body is malformed. It reports whether decoding succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Error: errorBody{
		Code:    code,
		Message: errors.UserMessage(err),
	}})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidOption:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
