// Package api exposes the fuzzing status HTTP API: corpus statistics,
// divergence records, and live run metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/observability"
)

// CorpusStore is the corpus read surface consumed by the API.
// *corpus.Manager satisfies this without changes.
type CorpusStore interface {
	GetStats() (corpus.Stats, error)
	ListDivergences(limit int) ([]map[string]any, error)
	GetDivergence(caseID string) (map[string]any, error)
}

// MetricsSource provides a point-in-time view of run metrics.
// *observability.RunMetrics satisfies this without changes.
type MetricsSource interface {
	Snapshot() observability.Summary
}

// Server is the HTTP API server for fuzzing campaign status.
type Server struct {
	store   CorpusStore
	metrics MetricsSource
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server with the given corpus store, metrics source, CORS
// origins, and optional OIDC authentication.
func New(store CorpusStore, metrics MetricsSource, corsOrigins []string, authCfg OIDCConfig) (*Server, error) {
	s := &Server{store: store, metrics: metrics, mux: http.NewServeMux()}
	s.routes()

	handler := http.Handler(s.mux)
	if authCfg.Enabled {
		provider, err := oidc.NewProvider(context.Background(), authCfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: create OIDC provider: %w", err)
		}
		handler = oidcAuth(provider, authCfg.Audience)(handler)
	}
	s.handler = requestID(logging(cors(corsOrigins, handler)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/corpus/stats", s.handleCorpusStats)
	s.mux.HandleFunc("GET /api/v1/divergences", s.handleListDivergences)
	s.mux.HandleFunc("GET /api/v1/divergences/{id}", s.handleGetDivergence)
	s.mux.HandleFunc("GET /api/v1/metrics", s.handleMetrics)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
