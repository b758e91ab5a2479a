package queues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protocol-parity/parity-go/internal/temporal/versioning"
)

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	assert.Len(t, configs, 2)
	assert.Contains(t, configs, versioning.QueueCampaign)
	assert.Contains(t, configs, versioning.QueueMaintenance)

	// Maintenance queue should be single-flight.
	maintCfg := configs[versioning.QueueMaintenance]
	assert.Equal(t, 1, maintCfg.Options.MaxConcurrentActivityExecutionSize)
}

func TestParseQueues(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr string
	}{
		{"empty defaults to campaign", "", []string{versioning.QueueCampaign}, ""},
		{"short name campaign", "campaign", []string{versioning.QueueCampaign}, ""},
		{"short name maintenance", "maintenance", []string{versioning.QueueMaintenance}, ""},
		{"full name", "parity-campaign", []string{versioning.QueueCampaign}, ""},
		{"multiple", "campaign,maintenance", []string{versioning.QueueCampaign, versioning.QueueMaintenance}, ""},
		{"deduplicate", "campaign,campaign", []string{versioning.QueueCampaign}, ""},
		{"spaces trimmed", " campaign , maintenance ", []string{versioning.QueueCampaign, versioning.QueueMaintenance}, ""},
		{"unknown queue", "bogus", nil, `unknown queue "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQueues(tt.raw)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
