package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/internal/logging"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

// Gate defines what the HTTP server needs from the evaluator.
type Gate interface {
	Explain(ctx context.Context, cond domain.Condition, causes []domain.Cause) (condition.Decision, error)
}

// Server exposes the evaluator over a JSON API.
type Server struct {
	Gate       Gate
	Source     ports.CauseSource
	Store      ports.BuildStore
	Conditions ports.ConditionLoader
	Metrics    http.Handler
	Logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSource enables the /builds endpoints.
func WithSource(src ports.CauseSource) Option {
	return func(s *Server) { s.Source = src }
}

// WithStore enables recording builds and their causes, and evaluating them.
func WithStore(store ports.BuildStore) Option {
	return func(s *Server) {
		s.Store = store
		s.Source = store
	}
}

// WithConditions enables the /conditions endpoints and condition_id lookups.
func WithConditions(l ports.ConditionLoader) Option {
	return func(s *Server) { s.Conditions = l }
}

// WithMetrics mounts a metrics handler (e.g. promhttp) at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Condition domain.Condition `json:"condition"`
	Causes    []domain.Cause   `json:"causes"`
}

// BuildEvaluateRequest is the body of POST /builds/{id}/evaluate.
// Exactly one of Condition and ConditionID must be set.
type BuildEvaluateRequest struct {
	Condition   *domain.Condition `json:"condition,omitempty"`
	ConditionID string            `json:"condition_id,omitempty"`
}

// BuildRequest is the body of PUT /builds/{id}. The path carries the ID.
type BuildRequest struct {
	Project     string            `json:"project"`
	Number      int               `json:"number"`
	Causes      []domain.Cause    `json:"causes"`
	ParentID    string            `json:"parent_id,omitempty"`
	Combination map[string]string `json:"combination,omitempty"`
}

// NewHandler creates a new HTTP handler for the gate.
func NewHandler(gate Gate, opts ...Option) http.Handler {
	s := &Server{Gate: gate}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/evaluate", s.Evaluate)
	r.Put("/builds/{id}", s.PutBuild)
	r.Get("/builds/{id}", s.GetBuild)
	r.Delete("/builds/{id}", s.DeleteBuild)
	r.Post("/builds/{id}/causes", s.AppendCause)
	r.Post("/builds/{id}/evaluate", s.EvaluateBuild)
	r.Get("/conditions", s.ListConditions)
	r.Get("/conditions/{id}", s.GetCondition)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// readBody reads the request body and validates it against the named schema.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("request body rejected", "path", r.URL.Path, "error", err)
		return false
	}
	if err := validateBody(schema, body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		s.Logger.Warn("request failed validation", "path", r.URL.Path, "error", err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("request body decode failed", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if !s.readBody(w, r, "EvaluateRequest", &body) {
		return
	}
	if body.Causes == nil {
		body.Causes = []domain.Cause{}
	}

	decision, err := s.Gate.Explain(r.Context(), body.Condition, body.Causes)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid condition: %v", err), http.StatusBadRequest)
		s.Logger.Warn("Evaluate: invalid condition", "error", err)
		return
	}
	s.writeJSON(w, decision)
}

// PutBuild handles the PUT /builds/{id} request.
// The stored cause list is replaced by the one in the body.
func (s *Server) PutBuild(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "Build recording is not configured", http.StatusNotImplemented)
		return
	}

	buildID := chi.URLParam(r, "id")
	var body BuildRequest
	if !s.readBody(w, r, "BuildRequest", &body) {
		return
	}

	build := domain.NewBuild(buildID, body.Project, body.Number, body.Causes...)
	build.ParentID = body.ParentID
	build.Combination = body.Combination
	if build.Project == "" {
		build.Project = buildID
	}

	if err := s.Store.Save(r.Context(), build); err != nil {
		http.Error(w, "Failed to save build", http.StatusInternalServerError)
		s.Logger.Error("PutBuild: save failed", "build", buildID, "error", err)
		return
	}
	s.Logger.Debug("build recorded", "build", buildID, "causes", len(build.Causes))
	s.writeJSON(w, build)
}

// GetBuild handles the GET /builds/{id} request.
func (s *Server) GetBuild(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "Build recording is not configured", http.StatusNotImplemented)
		return
	}

	buildID := chi.URLParam(r, "id")
	build, err := s.Store.Load(r.Context(), buildID)
	if err != nil {
		s.buildError(w, buildID, "GetBuild", err)
		return
	}
	s.writeJSON(w, build)
}

// DeleteBuild handles the DELETE /builds/{id} request.
func (s *Server) DeleteBuild(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "Build recording is not configured", http.StatusNotImplemented)
		return
	}

	buildID := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), buildID); err != nil {
		s.buildError(w, buildID, "DeleteBuild", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendCause handles the POST /builds/{id}/causes request.
func (s *Server) AppendCause(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "Build recording is not configured", http.StatusNotImplemented)
		return
	}

	buildID := chi.URLParam(r, "id")
	var cause domain.Cause
	if !s.readBody(w, r, "Cause", &cause) {
		return
	}

	if err := s.Store.AppendCause(r.Context(), buildID, cause); err != nil {
		s.buildError(w, buildID, "AppendCause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) buildError(w http.ResponseWriter, buildID, op string, err error) {
	if errors.Is(err, domain.ErrBuildNotFound) {
		http.Error(w, fmt.Sprintf("Build %s not found", buildID), http.StatusNotFound)
		return
	}
	http.Error(w, "Build store failure", http.StatusInternalServerError)
	s.Logger.Error(op+" failed", "build", buildID, "error", err)
}

// EvaluateBuild handles the POST /builds/{id}/evaluate request.
func (s *Server) EvaluateBuild(w http.ResponseWriter, r *http.Request) {
	if s.Source == nil {
		http.Error(w, "Build lookup is not configured", http.StatusNotImplemented)
		return
	}

	buildID := chi.URLParam(r, "id")
	var body BuildEvaluateRequest
	if !s.readBody(w, r, "BuildEvaluateRequest", &body) {
		return
	}

	cond, status, err := s.resolveCondition(r.Context(), body)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	causes, err := s.Source.Causes(r.Context(), buildID)
	if err != nil {
		if errors.Is(err, domain.ErrBuildNotFound) {
			http.Error(w, fmt.Sprintf("Build %s not found", buildID), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to read build causes", http.StatusInternalServerError)
		s.Logger.Error("EvaluateBuild: cause lookup failed", "build", buildID, "error", err)
		return
	}

	decision, err := s.Gate.Explain(r.Context(), cond, causes)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid condition: %v", err), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, decision)
}

func (s *Server) resolveCondition(ctx context.Context, body BuildEvaluateRequest) (domain.Condition, int, error) {
	switch {
	case body.Condition != nil && body.ConditionID != "":
		return domain.Condition{}, http.StatusBadRequest, fmt.Errorf("set either condition or condition_id, not both")
	case body.Condition != nil:
		return *body.Condition, http.StatusOK, nil
	case body.ConditionID == "":
		return domain.Condition{}, http.StatusBadRequest, fmt.Errorf("condition or condition_id is required")
	case s.Conditions == nil:
		return domain.Condition{}, http.StatusNotImplemented, fmt.Errorf("condition lookup is not configured")
	}

	cond, err := s.Conditions.GetCondition(ctx, body.ConditionID)
	if err != nil {
		if errors.Is(err, domain.ErrConditionNotFound) {
			return domain.Condition{}, http.StatusNotFound, fmt.Errorf("condition %s not found", body.ConditionID)
		}
		s.Logger.Error("condition lookup failed", "condition", body.ConditionID, "error", err)
		return domain.Condition{}, http.StatusInternalServerError, fmt.Errorf("failed to load condition")
	}
	return cond, http.StatusOK, nil
}

// ListConditions handles the GET /conditions request.
func (s *Server) ListConditions(w http.ResponseWriter, r *http.Request) {
	if s.Conditions == nil {
		http.Error(w, "Condition lookup is not configured", http.StatusNotImplemented)
		return
	}
	ids, err := s.Conditions.ListConditions(r.Context())
	if err != nil {
		http.Error(w, "Failed to list conditions", http.StatusInternalServerError)
		s.Logger.Error("ListConditions failed", "error", err)
		return
	}
	s.writeJSON(w, ids)
}

// GetCondition handles the GET /conditions/{id} request.
func (s *Server) GetCondition(w http.ResponseWriter, r *http.Request) {
	if s.Conditions == nil {
		http.Error(w, "Condition lookup is not configured", http.StatusNotImplemented)
		return
	}
	id := chi.URLParam(r, "id")
	cond, err := s.Conditions.GetCondition(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConditionNotFound) {
			http.Error(w, fmt.Sprintf("Condition %s not found", id), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load condition", http.StatusInternalServerError)
		s.Logger.Error("GetCondition failed", "condition", id, "error", err)
		return
	}
	s.writeJSON(w, cond)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	s.writeJSON(w, map[string]string{
		"app":         "runcondition-http",
		"version":     strings.TrimSpace(runcondition.Version),
		"api_version": apiVersion,
	})
}
