// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/engine"
	"github.com/spigell/program-matcher/internal/logger"
)

// RequestIDHeader carries the request id. It is generated when the client does not send one.
const RequestIDHeader = "X-Request-ID"

// Matcher is the engine surface served over HTTP.
type Matcher interface {
	Match(ctx context.Context, req engine.Request) (*engine.Response, error)
	Analyze(ctx context.Context, userID, programID string) (*engine.Analysis, error)
}

// Middleware wraps the router, e.g. with request metrics.
type Middleware func(http.Handler) http.Handler

type Router struct {
	matcher    Matcher
	metrics    http.Handler
	middleware []Middleware
	logger     *zap.Logger
}

type Option func(*Router)

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(rt *Router) { rt.metrics = h }
}

func WithMiddleware(m Middleware) Option {
	return func(rt *Router) { rt.middleware = append(rt.middleware, m) }
}

func NewRouter(matcher Matcher, log *zap.Logger, opts ...Option) *Router {
	rt := &Router{matcher: matcher, logger: logger.Named(log, "http")}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/matches", rt.matches)
	mux.HandleFunc("GET /v1/programs/{id}/analysis", rt.analysis)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics)
	}

	var handler http.Handler = mux
	for i := len(rt.middleware) - 1; i >= 0; i-- {
		handler = rt.middleware[i](handler)
	}
	return rt.logging(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type matchesPayload struct {
	Success bool `json:"success"`
	*engine.Response
}

func (rt *Router) matches(w http.ResponseWriter, r *http.Request) {
	req, err := parseMatchRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error(), Code: string(engine.CodeInvalidRequest)})
		return
	}

	resp, err := rt.matcher.Match(r.Context(), req)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesPayload{Success: true, Response: resp})
}

type analysisPayload struct {
	Success     bool             `json:"success"`
	FitAnalysis *engine.Analysis `json:"fit_analysis"`
}

func (rt *Router) analysis(w http.ResponseWriter, r *http.Request) {
	result, err := rt.matcher.Analyze(r.Context(), r.URL.Query().Get("user_id"), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisPayload{Success: true, FitAnalysis: result})
}

// parseMatchRequest reads the match options from the query string. Absent
// options keep their defaults.
func parseMatchRequest(r *http.Request) (engine.Request, error) {
	query := r.URL.Query()
	req := engine.NewRequest(strings.TrimSpace(query.Get("user_id")))

	ints := []struct {
		name string
		dst  *int
	}{
		{"min_score", &req.MinScore},
		{"limit", &req.Limit},
		{"offset", &req.Offset},
		{"ai_limit", &req.AILimit},
	}
	for _, param := range ints {
		raw := query.Get(param.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return req, fmt.Errorf("%s must be a non-negative integer", param.name)
		}
		*param.dst = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"active_only", &req.ActiveOnly},
		{"include_upcoming", &req.IncludeUpcoming},
		{"ai", &req.AI},
		{"skip_cache", &req.SkipCache},
	}
	for _, param := range bools {
		raw := query.Get(param.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("%s must be a boolean", param.name)
		}
		*param.dst = v
	}

	return req, nil
}

type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	// Details carries the cause of server side failures.
	Details string `json:"details,omitempty"`
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	var engineErr *engine.Error
	if !errors.As(err, &engineErr) {
		rt.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: err.Error()})
		return
	}

	status := statusFor(engineErr.Code)
	payload := errorPayload{Error: engineErr.Message, Code: string(engineErr.Code)}
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request failed", zap.String("code", string(engineErr.Code)), zap.Error(err))
		if engineErr.Cause != nil {
			payload.Details = engineErr.Cause.Error()
		}
	}
	writeJSON(w, status, payload)
}

func statusFor(code engine.Code) int {
	switch code {
	case engine.CodeInvalidRequest:
		return http.StatusBadRequest
	case engine.CodeProfileRequired, engine.CodeProgramNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
		rt.logger.Debug("request served",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
