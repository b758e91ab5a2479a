package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the fuzzing system.
type Metrics struct {
	CaseCount       metric.Int64Counter
	DifferenceCount metric.Int64Counter
	CaseDuration    metric.Float64Histogram
	AdapterCalls    metric.Int64Counter
}

// NewMetrics creates the fuzzing metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("parity")

	caseCount, err := meter.Int64Counter("parity.case.count",
		metric.WithDescription("Number of fuzz cases executed"),
	)
	if err != nil {
		return nil, err
	}

	differenceCount, err := meter.Int64Counter("parity.difference.count",
		metric.WithDescription("Number of semantic differences found"),
	)
	if err != nil {
		return nil, err
	}

	caseDuration, err := meter.Float64Histogram("parity.case.duration_seconds",
		metric.WithDescription("End-to-end duration of one differential case"),
	)
	if err != nil {
		return nil, err
	}

	adapterCalls, err := meter.Int64Counter("parity.adapter.calls",
		metric.WithDescription("Number of adapter invocations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		CaseCount:       caseCount,
		DifferenceCount: differenceCount,
		CaseDuration:    caseDuration,
		AdapterCalls:    adapterCalls,
	}, nil
}

// RecordCase records one executed differential case and its outcome.
func (m *Metrics) RecordCase(ctx context.Context, method string, equivalent bool, differences int, d time.Duration) {
	m.CaseCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.Bool("equivalent", equivalent),
		),
	)
	if differences > 0 {
		m.DifferenceCount.Add(ctx, int64(differences),
			metric.WithAttributes(attribute.String("method", method)),
		)
	}
	m.CaseDuration.Record(ctx, d.Seconds())
}

// RecordAdapterCall records one adapter invocation.
func (m *Metrics) RecordAdapterCall(ctx context.Context, adapterName string, success bool) {
	m.AdapterCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("adapter", adapterName),
			attribute.Bool("success", success),
		),
	)
}
