// Command fuzzer runs a one-shot differential fuzzing session without a
// Temporal server: generate N cases, run each against every configured
// backend, persist the corpus, and print a summary.
// Exit code 0 = all cases equivalent. Exit code 1 = divergence detected.
// Exit code 2 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/casegen"
	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/observability"
	"github.com/protocol-parity/parity-go/internal/verifier"
)

func main() {
	cases := flag.Int("cases", 100, "number of cases to run")
	seed := flag.Uint64("seed", 0, "generator seed (overrides FUZZ_SEED when non-zero)")
	skipPreflight := flag.Bool("skip-preflight", false, "skip the backend health check")
	publishMetrics := flag.Bool("publish-metrics", false, "publish the run summary to CloudWatch")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fatal("config: %v", err)
	}
	if *seed != 0 {
		cfg.FuzzSeed = *seed
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.JSONLogs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var otelMetrics *observability.Metrics
	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, "fuzzer")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
		if otelMetrics, err = observability.NewMetrics(); err != nil {
			logger.Error("otel metrics init failed", "error", err)
		}
	}

	adapters, err := adapter.FromConfig(cfg)
	if err != nil {
		fatal("adapters: %v", err)
	}

	store, err := corpus.New(cfg.ArtifactDir)
	if err != nil {
		fatal("corpus: %v", err)
	}

	analyzer := analysis.New(adapters)

	if !*skipPreflight {
		preflight := verifier.Preflight(ctx, adapters)
		for _, backend := range preflight.Backends {
			logger.Info("preflight", "adapter", backend.AdapterName,
				"reachable", backend.Reachable, "detail", backend.Detail)
		}
		if preflight.Recommendation == verifier.RecommendAbort {
			fatal("preflight: only %d usable backends", preflight.UsableBackends)
		}
	}

	metrics := observability.NewRunMetrics()
	reporter := observability.NewReporter(logger)
	gen := casegen.New(cfg.FuzzSeed)

	logger.Info("starting run", "cases", *cases, "seed", cfg.FuzzSeed,
		"adapters", analyzer.AdapterCount(), "mode", string(cfg.Mode))

	for i := 0; i < *cases; i++ {
		if ctx.Err() != nil {
			logger.Warn("interrupted", "cases_run", i)
			break
		}

		fuzzCase := gen.Next()
		start := time.Now()
		result := analyzer.RunFuzzCase(ctx, &fuzzCase)
		elapsed := time.Since(start)

		metrics.RecordResult(&result, elapsed)
		reporter.LogResult(&result, elapsed)

		if otelMetrics != nil {
			otelMetrics.RecordCase(ctx, fuzzCase.MethodName, result.Equivalent, len(result.Differences), elapsed)
			for _, res := range result.AdapterResults {
				otelMetrics.RecordAdapterCall(ctx, res.AdapterName, res.Success)
			}
		}

		if err := store.ProcessResult(&result); err != nil {
			logger.Warn("corpus write failed", "case_id", corpus.CaseID(&fuzzCase), "error", err)
		}
	}

	if stats, err := store.GetStats(); err == nil {
		metrics.UpdateCorpus(uint64(stats.StableCases), uint64(stats.Divergences), uint64(stats.Crashes))
	}

	summary := metrics.Snapshot()
	reporter.LogSummary(summary)

	if *publishMetrics {
		if err := publishToCloudWatch(ctx, cfg, summary); err != nil {
			logger.Error("cloudwatch publish failed", "error", err)
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fatal("marshal summary: %v", err)
	}
	fmt.Println(string(out))

	if summary.DivergentCases > 0 {
		os.Exit(1)
	}
}

func publishToCloudWatch(ctx context.Context, cfg config.Config, summary observability.Summary) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	publisher := observability.NewCloudWatchPublisher(awsCfg, cfg.CWNamespace)
	if err := publisher.PublishSummary(ctx, summary); err != nil {
		return err
	}
	for _, stats := range summary.AdapterStats {
		if err := publisher.PublishAdapterStats(ctx, stats); err != nil {
			return err
		}
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
