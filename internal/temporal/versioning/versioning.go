// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	CampaignV1    = "fuzz-campaign-v1"
	MaintenanceV1 = "corpus-maintenance-v1"

	// Task queues. Campaign workers drive adapters, maintenance workers
	// only touch the corpus directory.
	QueueCampaign    = "parity-campaign"
	QueueMaintenance = "parity-maintenance"
)
