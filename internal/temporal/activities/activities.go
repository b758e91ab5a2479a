package activities

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/casegen"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/observability"
	"github.com/protocol-parity/parity-go/internal/ratelimit"
	"github.com/protocol-parity/parity-go/internal/verifier"
)

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
// Budget is optional; nil disables per-method budget enforcement.
type Activities struct {
	Analyzer *analysis.Analyzer
	Corpus   *corpus.Manager
	Metrics  *observability.RunMetrics
	Budget   *ratelimit.CallBudget
}

// checkBudget enforces the per-backend method budget when configured.
func (a *Activities) checkBudget(method string) error {
	if a.Budget == nil {
		return nil
	}
	if err := a.Budget.Check("campaign", method); err != nil {
		return err
	}
	a.Budget.Record("campaign", method)
	return nil
}

// RunFuzzBatch replays Count cases from the seeded stream, starting at
// StartIndex, against all configured adapters and persists every outcome.
// A budget-exhausted method skips the case; a corpus write failure is
// counted but never aborts the batch.
func (a *Activities) RunFuzzBatch(ctx context.Context, in FuzzBatchInput) (FuzzBatchOutput, error) {
	if a.Analyzer == nil || a.Corpus == nil {
		return FuzzBatchOutput{}, fmt.Errorf("fuzz batch activity: analyzer and corpus required")
	}

	gen := casegen.New(in.Seed)
	for i := 0; i < in.StartIndex; i++ {
		gen.Next()
	}

	out := FuzzBatchOutput{}
	for i := 0; i < in.Count; i++ {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("fuzz batch activity: %w", err)
		}

		fuzzCase := gen.Next()
		if err := a.checkBudget(fuzzCase.MethodName); err != nil {
			out.BudgetSkips++
			continue
		}

		start := time.Now()
		result := a.Analyzer.RunFuzzCase(ctx, &fuzzCase)
		out.CasesRun++
		if result.Equivalent {
			out.EquivalentCases++
		} else {
			out.DivergentCases++
			out.TotalDifferences += len(result.Differences)
		}

		if a.Metrics != nil {
			a.Metrics.RecordResult(&result, time.Since(start))
		}
		if err := a.Corpus.ProcessResult(&result); err != nil {
			slog.Warn("corpus write failed", "method", fuzzCase.MethodName, "error", err)
			out.PersistErrors++
		}
	}
	return out, nil
}

// PreflightBackends probes every adapter before a campaign starts.
func (a *Activities) PreflightBackends(ctx context.Context, _ struct{}) (PreflightOutput, error) {
	if a.Analyzer == nil {
		return PreflightOutput{}, fmt.Errorf("preflight activity: analyzer required")
	}
	return PreflightOutput{Result: verifier.Preflight(ctx, a.Analyzer.Adapters())}, nil
}

// CollectCorpusStats counts the corpus entries per bucket.
func (a *Activities) CollectCorpusStats(_ context.Context, _ struct{}) (CorpusStatsOutput, error) {
	stats, err := a.Corpus.GetStats()
	if err != nil {
		return CorpusStatsOutput{}, fmt.Errorf("corpus stats activity: %w", err)
	}
	if a.Metrics != nil {
		a.Metrics.UpdateCorpus(uint64(stats.StableCases), uint64(stats.Divergences), uint64(stats.Crashes))
	}
	return CorpusStatsOutput{Stats: stats}, nil
}

// CleanupCorpus removes corpus files older than the retention window.
func (a *Activities) CleanupCorpus(_ context.Context, in CleanupCorpusInput) (CleanupCorpusOutput, error) {
	removed, err := a.Corpus.CleanupOldFiles(in.RetentionDays)
	if err != nil {
		return CleanupCorpusOutput{}, fmt.Errorf("cleanup activity: %w", err)
	}
	return CleanupCorpusOutput{FilesRemoved: removed}, nil
}
