// Command api runs the HTTP API server for corpus inspection.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/protocol-parity/parity-go/internal/api"
	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.JSONLogs)

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(context.Background(), "api")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	store, err := corpus.New(cfg.ArtifactDir)
	if err != nil {
		logger.Error("corpus error", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewRunMetrics()
	if stats, err := store.GetStats(); err == nil {
		metrics.UpdateCorpus(uint64(stats.StableCases), uint64(stats.Divergences), uint64(stats.Crashes))
	}

	oidcCfg := api.OIDCConfig{
		IssuerURL: cfg.OIDCIssuer,
		Audience:  cfg.OIDCAudience,
		Enabled:   cfg.OIDCIssuer != "",
	}
	srv, err := api.New(store, metrics, cfg.CORSOrigins, oidcCfg)
	if err != nil {
		logger.Error("server init failed", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "parity-api")
	}

	addr := ":" + cfg.APIPort
	logger.Info("starting API server", "addr", addr, "oidc_enabled", oidcCfg.Enabled)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
