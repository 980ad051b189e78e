// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/prediction"
)

// defaultMaxBodyBytes bounds POST /predict bodies when no option is given.
const defaultMaxBodyBytes int64 = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	FeaturesDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	featuresHandler  *FeaturesHandler
	dashboardHandler *dashboardHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes limits the size of prediction request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		predictHandler:   NewPredictHandler(deps, o.maxBodyBytes),
		featuresHandler:  NewFeaturesHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/features", MetricsMiddleware(s.featuresHandler.HandleGetFeatures, "features"))
	mux.HandleFunc("/predict", RequestIDMiddleware(MetricsMiddleware(s.predictHandler.HandlePredict, "predict")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Field: fieldOf(err)})
}

// fieldOf names the offending feature for assembler errors.
func fieldOf(err error) string {
	var mf *features.MissingFeatureError
	if errors.As(err, &mf) {
		return mf.Field
	}
	var de *features.DomainError
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}

// resultResponse mirrors the OpenAPI schema for a successful prediction.
type resultResponse = prediction.Result
