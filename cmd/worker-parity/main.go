// Command worker-parity runs the Temporal worker for fuzzing campaigns.
// Supports stub mode (fixture replay) and live mode (real JSON-RPC backends).
package main

import (
	"log"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/observability"
	"github.com/protocol-parity/parity-go/internal/ratelimit"
	"github.com/protocol-parity/parity-go/internal/temporal/activities"
	"github.com/protocol-parity/parity-go/internal/temporal/queues"
	"github.com/protocol-parity/parity-go/internal/temporal/versioning"
	"github.com/protocol-parity/parity-go/internal/temporal/workflows"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.JSONLogs)
	temporalLogger := observability.NewTemporalSlogAdapter(logger)

	adapters, err := adapter.FromConfig(cfg)
	if err != nil {
		log.Fatalf("adapters: %v", err)
	}

	store, err := corpus.New(cfg.ArtifactDir)
	if err != nil {
		log.Fatalf("corpus: %v", err)
	}

	queueNames, err := queues.ParseQueues(os.Getenv("PARITY_QUEUES"))
	if err != nil {
		log.Fatalf("queues: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNS,
		Logger:    temporalLogger,
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	acts := &activities.Activities{
		Analyzer: analysis.New(adapters),
		Corpus:   store,
		Metrics:  observability.NewRunMetrics(),
		Budget:   ratelimit.NewCallBudget(1000, time.Minute),
	}

	configs := queues.DefaultConfigs()
	workers := make([]worker.Worker, 0, len(queueNames))
	for _, name := range queueNames {
		qc := configs[name]
		w := worker.New(c, qc.Name, qc.Options)

		switch name {
		case versioning.QueueCampaign:
			w.RegisterWorkflow(workflows.FuzzCampaignWorkflow)
		case versioning.QueueMaintenance:
			w.RegisterWorkflow(workflows.CorpusMaintenanceWorkflow)
		}
		w.RegisterActivity(acts)

		if err := w.Start(); err != nil {
			log.Fatalf("worker start (%s): %v", qc.Name, err)
		}
		workers = append(workers, w)
		logger.Info("worker started", "queue", qc.Name, "mode", string(cfg.Mode))
	}

	<-worker.InterruptCh()
	for _, w := range workers {
		w.Stop()
	}
}
