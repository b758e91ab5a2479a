// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the pure-logic packages in internal/.
package activities

import (
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/verifier"
)

// FuzzBatchInput is the activity input for one batch of fuzz cases.
// StartIndex positions the seeded generator so batches never replay
// each other's cases.
type FuzzBatchInput struct {
	Seed       uint64 `json:"seed"`
	StartIndex int    `json:"start_index"`
	Count      int    `json:"count"`
}

// FuzzBatchOutput summarizes one batch's differential outcomes.
type FuzzBatchOutput struct {
	CasesRun         int `json:"cases_run"`
	EquivalentCases  int `json:"equivalent_cases"`
	DivergentCases   int `json:"divergent_cases"`
	TotalDifferences int `json:"total_differences"`
	BudgetSkips      int `json:"budget_skips"`
	PersistErrors    int `json:"persist_errors"`
}

// PreflightOutput is the activity output from the backend health probe.
type PreflightOutput struct {
	Result verifier.PreflightResult `json:"result"`
}

// CorpusStatsOutput is the activity output from corpus stat collection.
type CorpusStatsOutput struct {
	Stats corpus.Stats `json:"stats"`
}

// CleanupCorpusInput is the activity input for corpus retention cleanup.
type CleanupCorpusInput struct {
	RetentionDays int `json:"retention_days"`
}

// CleanupCorpusOutput is the activity output from corpus cleanup.
type CleanupCorpusOutput struct {
	FilesRemoved int `json:"files_removed"`
}
