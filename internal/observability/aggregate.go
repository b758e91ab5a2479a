package observability

import (
	"sync"
	"time"

	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/domain"
)

// AdapterStats aggregates call outcomes for one adapter across a run.
type AdapterStats struct {
	Name              string  `json:"name"`
	SuccessfulCalls   uint64  `json:"successful_calls"`
	FailedCalls       uint64  `json:"failed_calls"`
	TotalResponseMS   uint64  `json:"total_response_ms"`
	AverageResponseMS uint64  `json:"average_response_ms"`
	ErrorRate         float64 `json:"error_rate"`
}

// CorpusSnapshot holds the corpus-side view of a run's progress.
type CorpusSnapshot struct {
	StableEntries     uint64  `json:"stable_entries"`
	DivergenceEntries uint64  `json:"divergence_entries"`
	CrashEntries      uint64  `json:"crash_entries"`
	GrowthRate        float64 `json:"growth_rate"`
}

// RunMetrics aggregates differential outcomes across a fuzzing run.
// Safe for concurrent use.
type RunMetrics struct {
	mu sync.Mutex

	totalCases      uint64
	equivalentCases uint64
	divergentCases  uint64
	totalDiffs      uint64
	totalExecTime   time.Duration
	adapters        map[string]*AdapterStats
	corpus          CorpusSnapshot
}

// NewRunMetrics creates an empty aggregator.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{adapters: make(map[string]*AdapterStats)}
}

// RecordResult folds one differential outcome into the aggregate.
func (r *RunMetrics) RecordResult(result *analysis.DifferentialResult, execTime time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalCases++
	r.totalExecTime += execTime
	if result.Equivalent {
		r.equivalentCases++
	} else {
		r.divergentCases++
		r.totalDiffs += uint64(len(result.Differences))
	}

	for _, adapterResult := range result.AdapterResults {
		r.updateAdapter(adapterResult)
	}
}

func (r *RunMetrics) updateAdapter(result domain.FuzzResult) {
	stats, ok := r.adapters[result.AdapterName]
	if !ok {
		stats = &AdapterStats{Name: result.AdapterName}
		r.adapters[result.AdapterName] = stats
	}

	if result.Success {
		stats.SuccessfulCalls++
	} else {
		stats.FailedCalls++
	}

	total := stats.SuccessfulCalls + stats.FailedCalls
	stats.TotalResponseMS += result.ExecutionTimeMS
	stats.AverageResponseMS = stats.TotalResponseMS / total
	stats.ErrorRate = float64(stats.FailedCalls) / float64(total) * 100.0
}

// UpdateCorpus refreshes the corpus-side counters. The growth rate is
// entries per hour, assuming roughly one case per second of run time.
func (r *RunMetrics) UpdateCorpus(stable, divergences, crashes uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.corpus.StableEntries = stable
	r.corpus.DivergenceEntries = divergences
	r.corpus.CrashEntries = crashes

	totalEntries := stable + divergences + crashes
	hours := float64(r.totalCases) / 3600.0
	if hours < 1.0 {
		hours = 1.0
	}
	r.corpus.GrowthRate = float64(totalEntries) / hours
}

// Summary is a point-in-time copy of the aggregate.
type Summary struct {
	TotalCases        uint64                  `json:"total_cases"`
	EquivalentCases   uint64                  `json:"equivalent_cases"`
	DivergentCases    uint64                  `json:"divergent_cases"`
	TotalDifferences  uint64                  `json:"total_differences"`
	TotalExecTimeMS   uint64                  `json:"total_execution_time_ms"`
	AverageExecTimeMS uint64                  `json:"average_execution_time_ms"`
	AdapterStats      map[string]AdapterStats `json:"adapter_metrics"`
	CorpusStats       CorpusSnapshot          `json:"corpus_stats"`
}

// Snapshot returns a copy of the current aggregate.
func (r *RunMetrics) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	adapters := make(map[string]AdapterStats, len(r.adapters))
	for name, stats := range r.adapters {
		adapters[name] = *stats
	}

	var avgMS uint64
	if r.totalCases > 0 {
		avgMS = uint64(r.totalExecTime.Milliseconds()) / r.totalCases
	}

	return Summary{
		TotalCases:        r.totalCases,
		EquivalentCases:   r.equivalentCases,
		DivergentCases:    r.divergentCases,
		TotalDifferences:  r.totalDiffs,
		TotalExecTimeMS:   uint64(r.totalExecTime.Milliseconds()),
		AverageExecTimeMS: avgMS,
		AdapterStats:      adapters,
		CorpusStats:       r.corpus,
	}
}
