// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/worker"

	"github.com/protocol-parity/parity-go/internal/temporal/versioning"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueueCampaign: adapter-bound fuzz batches, moderate concurrency so
//     backends are not overrun
//   - QueueMaintenance: corpus housekeeping, single-flight
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueueCampaign: {
			Name: versioning.QueueCampaign,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     5,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueueMaintenance: {
			Name: versioning.QueueMaintenance,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     1,
				MaxConcurrentWorkflowTaskExecutionSize: 1,
			},
		},
	}
}

// ParseQueues parses a comma-separated queue list (e.g. "campaign,maintenance")
// into a set of queue names. Accepts both short names ("campaign") and
// full names ("parity-campaign"). Returns an error for unknown queues.
func ParseQueues(raw string) ([]string, error) {
	if raw == "" {
		return []string{versioning.QueueCampaign}, nil
	}

	shortNames := map[string]string{
		"campaign":    versioning.QueueCampaign,
		"maintenance": versioning.QueueMaintenance,
	}
	fullNames := map[string]bool{
		versioning.QueueCampaign:    true,
		versioning.QueueMaintenance: true,
	}

	seen := make(map[string]bool)
	var result []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		// Resolve short name to full name.
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if !fullNames[name] {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return []string{versioning.QueueCampaign}, nil
	}
	return result, nil
}
