package observability

import (
	"context"
	"errors"
	"testing"

	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCWAPI struct {
	calls  int
	inputs []*cw.PutMetricDataInput
	err    error
}

func (m *mockCWAPI) PutMetricData(_ context.Context, params *cw.PutMetricDataInput, _ ...func(*cw.Options)) (*cw.PutMetricDataOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls++
	m.inputs = append(m.inputs, params)
	return &cw.PutMetricDataOutput{}, nil
}

func TestPublishSummary(t *testing.T) {
	mock := &mockCWAPI{}
	pub := NewCloudWatchPublisherFromAPI(mock, "Parity/Fuzzing")

	summary := Summary{
		TotalCases:       100,
		EquivalentCases:  90,
		DivergentCases:   10,
		TotalDifferences: 25,
		CorpusStats:      CorpusSnapshot{StableEntries: 90, DivergenceEntries: 10, CrashEntries: 10},
	}

	require.NoError(t, pub.PublishSummary(context.Background(), summary))
	require.Equal(t, 1, mock.calls)

	input := mock.inputs[0]
	assert.Equal(t, "Parity/Fuzzing", *input.Namespace)
	require.Len(t, input.MetricData, 7)
	assert.Equal(t, "TotalCases", *input.MetricData[0].MetricName)
	assert.Equal(t, 100.0, *input.MetricData[0].Value)
}

func TestPublishAdapterStats(t *testing.T) {
	mock := &mockCWAPI{}
	pub := NewCloudWatchPublisherFromAPI(mock, "Parity/Fuzzing")

	stats := AdapterStats{
		Name:              "lnd",
		SuccessfulCalls:   8,
		FailedCalls:       2,
		ErrorRate:         20.0,
		AverageResponseMS: 42,
	}

	require.NoError(t, pub.PublishAdapterStats(context.Background(), stats))
	require.Equal(t, 1, mock.calls)

	input := mock.inputs[0]
	require.Len(t, input.MetricData, 4)
	require.Len(t, input.MetricData[0].Dimensions, 1)
	assert.Equal(t, "Adapter", *input.MetricData[0].Dimensions[0].Name)
	assert.Equal(t, "lnd", *input.MetricData[0].Dimensions[0].Value)
}

func TestPublishSummary_APIError(t *testing.T) {
	mock := &mockCWAPI{err: errors.New("throttled")}
	pub := NewCloudWatchPublisherFromAPI(mock, "Parity/Fuzzing")

	err := pub.PublishSummary(context.Background(), Summary{})
	assert.ErrorContains(t, err, "put metric data")
}
