package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatchAPI is the subset of the CloudWatch client used by this package.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error)
}

// CloudWatchPublisher pushes run summaries to CloudWatch custom metrics.
type CloudWatchPublisher struct {
	api       CloudWatchAPI
	namespace string
}

// NewCloudWatchPublisher creates a publisher from an AWS config.
func NewCloudWatchPublisher(cfg aws.Config, namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{api: cw.NewFromConfig(cfg), namespace: namespace}
}

// NewCloudWatchPublisherFromAPI creates a publisher from an explicit API
// implementation (for testing).
func NewCloudWatchPublisherFromAPI(api CloudWatchAPI, namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{api: api, namespace: namespace}
}

// PublishSummary pushes the run-level counters as one metric batch.
func (p *CloudWatchPublisher) PublishSummary(ctx context.Context, summary Summary) error {
	now := time.Now().UTC()
	data := []cwtypes.MetricDatum{
		datum("TotalCases", float64(summary.TotalCases), now),
		datum("EquivalentCases", float64(summary.EquivalentCases), now),
		datum("DivergentCases", float64(summary.DivergentCases), now),
		datum("TotalDifferences", float64(summary.TotalDifferences), now),
		datum("CorpusStableEntries", float64(summary.CorpusStats.StableEntries), now),
		datum("CorpusDivergenceEntries", float64(summary.CorpusStats.DivergenceEntries), now),
		datum("CorpusCrashEntries", float64(summary.CorpusStats.CrashEntries), now),
	}

	_, err := p.api.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("cloudwatch: put metric data: %w", err)
	}
	return nil
}

// PublishAdapterStats pushes per-adapter counters with an Adapter dimension.
func (p *CloudWatchPublisher) PublishAdapterStats(ctx context.Context, stats AdapterStats) error {
	now := time.Now().UTC()
	dim := cwtypes.Dimension{
		Name:  aws.String("Adapter"),
		Value: aws.String(stats.Name),
	}

	data := []cwtypes.MetricDatum{
		dimDatum("SuccessfulCalls", float64(stats.SuccessfulCalls), now, dim),
		dimDatum("FailedCalls", float64(stats.FailedCalls), now, dim),
		dimDatum("ErrorRate", stats.ErrorRate, now, dim),
		dimDatum("AverageResponseMS", float64(stats.AverageResponseMS), now, dim),
	}

	_, err := p.api.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("cloudwatch: put adapter metrics for %s: %w", stats.Name, err)
	}
	return nil
}

func datum(name string, value float64, ts time.Time) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Timestamp:  aws.Time(ts),
		Unit:       cwtypes.StandardUnitCount,
	}
}

func dimDatum(name string, value float64, ts time.Time, dims ...cwtypes.Dimension) cwtypes.MetricDatum {
	d := datum(name, value, ts)
	d.Dimensions = dims
	return d
}
