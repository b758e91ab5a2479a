package observability

import (
	"log/slog"
	"time"

	"github.com/protocol-parity/parity-go/internal/analysis"
)

// Reporter logs differential outcomes as structured events.
type Reporter struct {
	logger *slog.Logger
}

// NewReporter creates a Reporter over the given logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// LogResult logs one differential outcome, plus a warning per difference.
func (r *Reporter) LogResult(result *analysis.DifferentialResult, execTime time.Duration) {
	adapterAttrs := make([]any, 0, len(result.AdapterResults))
	for _, res := range result.AdapterResults {
		adapterAttrs = append(adapterAttrs, slog.Group(res.AdapterName,
			"success", res.Success,
			"execution_time_ms", res.ExecutionTimeMS,
			"error", res.Error,
		))
	}

	r.logger.Info("differential_result",
		append([]any{
			"method_name", result.FuzzCase.MethodName,
			"equivalent", result.Equivalent,
			"differences_count", len(result.Differences),
			"execution_time_ms", execTime.Milliseconds(),
		}, adapterAttrs...)...,
	)

	for _, diff := range result.Differences {
		r.LogDifference(diff)
	}
}

// LogDifference logs one semantic divergence between two adapters.
func (r *Reporter) LogDifference(diff analysis.Difference) {
	r.logger.Warn("difference_found",
		"field_path", diff.FieldPath,
		"adapter_a", diff.AdapterA,
		"adapter_b", diff.AdapterB,
		"value_a", diff.ValueA,
		"value_b", diff.ValueB,
	)
}

// LogSummary logs the aggregated run metrics.
func (r *Reporter) LogSummary(summary Summary) {
	r.logger.Info("metrics_summary",
		"total_cases", summary.TotalCases,
		"equivalent_cases", summary.EquivalentCases,
		"divergent_cases", summary.DivergentCases,
		"total_differences", summary.TotalDifferences,
		"average_execution_time_ms", summary.AverageExecTimeMS,
		"corpus_stable", summary.CorpusStats.StableEntries,
		"corpus_divergences", summary.CorpusStats.DivergenceEntries,
		"corpus_crashes", summary.CorpusStats.CrashEntries,
	)
}
