package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/temporal/activities"
)

// DefaultRetentionDays is how long corpus entries are kept when the
// maintenance input does not say otherwise.
const DefaultRetentionDays = 30

// MaintenanceInput configures a corpus maintenance run.
type MaintenanceInput struct {
	RetentionDays int `json:"retention_days"`
}

// MaintenanceResult is the outcome of one maintenance run.
type MaintenanceResult struct {
	FilesRemoved int          `json:"files_removed"`
	Stats        corpus.Stats `json:"stats"`
}

// CorpusMaintenanceWorkflow removes expired corpus entries and reports the
// remaining bucket counts. Meant to run on a Temporal schedule.
func CorpusMaintenanceWorkflow(ctx workflow.Context, input MaintenanceInput) (MaintenanceResult, error) {
	logger := workflow.GetLogger(ctx)
	result := MaintenanceResult{}

	retention := input.RetentionDays
	if retention <= 0 {
		retention = DefaultRetentionDays
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	var cleanup activities.CleanupCorpusOutput
	err := workflow.ExecuteActivity(actCtx, "CleanupCorpus", activities.CleanupCorpusInput{
		RetentionDays: retention,
	}).Get(ctx, &cleanup)
	if err != nil {
		return result, fmt.Errorf("maintenance: cleanup: %w", err)
	}
	result.FilesRemoved = cleanup.FilesRemoved

	var stats activities.CorpusStatsOutput
	if err := workflow.ExecuteActivity(actCtx, "CollectCorpusStats", struct{}{}).Get(ctx, &stats); err != nil {
		return result, fmt.Errorf("maintenance: stats: %w", err)
	}
	result.Stats = stats.Stats

	logger.Info("corpus maintenance complete",
		"files_removed", result.FilesRemoved,
		"remaining", result.Stats.TotalCases,
	)
	return result, nil
}
