// Package workflows defines the Temporal workflows that drive fuzzing
// campaigns and corpus maintenance.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/protocol-parity/parity-go/internal/temporal/activities"
	"github.com/protocol-parity/parity-go/internal/verifier"
)

// ProgressQuery is the query name for live campaign progress.
const ProgressQuery = "progress"

// DefaultBatchSize bounds one activity execution so heartbeats and retries
// stay granular.
const DefaultBatchSize = 50

// CampaignInput configures one fuzzing campaign.
type CampaignInput struct {
	Seed       uint64 `json:"seed"`
	TotalCases int    `json:"total_cases"`
	BatchSize  int    `json:"batch_size"`
}

// CampaignProgress is the live view returned by the progress query.
type CampaignProgress struct {
	CasesRun         int  `json:"cases_run"`
	TotalCases       int  `json:"total_cases"`
	EquivalentCases  int  `json:"equivalent_cases"`
	DivergentCases   int  `json:"divergent_cases"`
	TotalDifferences int  `json:"total_differences"`
	Preflighted      bool `json:"preflighted"`
}

// CampaignResult is the final campaign outcome.
type CampaignResult struct {
	CasesRun         int    `json:"cases_run"`
	EquivalentCases  int    `json:"equivalent_cases"`
	DivergentCases   int    `json:"divergent_cases"`
	TotalDifferences int    `json:"total_differences"`
	BudgetSkips      int    `json:"budget_skips"`
	Aborted          bool   `json:"aborted"`
	AbortReason      string `json:"abort_reason,omitempty"`
}

// FuzzCampaignWorkflow preflights the backends, then drives the seeded case
// stream through batched RunFuzzBatch activities until TotalCases have run.
// Progress is queryable at any point via the "progress" query.
func FuzzCampaignWorkflow(ctx workflow.Context, input CampaignInput) (CampaignResult, error) {
	logger := workflow.GetLogger(ctx)
	result := CampaignResult{}
	progress := CampaignProgress{TotalCases: input.TotalCases}

	if err := workflow.SetQueryHandler(ctx, ProgressQuery, func() (CampaignProgress, error) {
		return progress, nil
	}); err != nil {
		return result, fmt.Errorf("campaign: register query handler: %w", err)
	}

	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	var preflight activities.PreflightOutput
	err := workflow.ExecuteActivity(actCtx, "PreflightBackends", struct{}{}).Get(ctx, &preflight)
	if err != nil {
		return result, fmt.Errorf("campaign: preflight: %w", err)
	}
	progress.Preflighted = true
	if preflight.Result.Recommendation == verifier.RecommendAbort {
		logger.Warn("campaign aborted by preflight",
			"usable_backends", preflight.Result.UsableBackends,
		)
		result.Aborted = true
		result.AbortReason = fmt.Sprintf("only %d usable backends", preflight.Result.UsableBackends)
		return result, nil
	}

	for start := 0; start < input.TotalCases; start += batchSize {
		count := batchSize
		if start+count > input.TotalCases {
			count = input.TotalCases - start
		}

		var batch activities.FuzzBatchOutput
		err := workflow.ExecuteActivity(actCtx, "RunFuzzBatch", activities.FuzzBatchInput{
			Seed:       input.Seed,
			StartIndex: start,
			Count:      count,
		}).Get(ctx, &batch)
		if err != nil {
			return result, fmt.Errorf("campaign: batch at %d: %w", start, err)
		}

		result.CasesRun += batch.CasesRun
		result.EquivalentCases += batch.EquivalentCases
		result.DivergentCases += batch.DivergentCases
		result.TotalDifferences += batch.TotalDifferences
		result.BudgetSkips += batch.BudgetSkips

		progress.CasesRun = result.CasesRun
		progress.EquivalentCases = result.EquivalentCases
		progress.DivergentCases = result.DivergentCases
		progress.TotalDifferences = result.TotalDifferences

		logger.Info("batch complete",
			"start", start,
			"cases_run", batch.CasesRun,
			"divergent", batch.DivergentCases,
		)
	}

	var stats activities.CorpusStatsOutput
	if err := workflow.ExecuteActivity(actCtx, "CollectCorpusStats", struct{}{}).Get(ctx, &stats); err != nil {
		logger.Warn("corpus stats collection failed", "error", err)
		return result, nil
	}
	logger.Info("campaign complete",
		"cases_run", result.CasesRun,
		"divergent", result.DivergentCases,
		"corpus_total", stats.Stats.TotalCases,
	)
	return result, nil
}
