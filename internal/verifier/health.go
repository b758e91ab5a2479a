// Package verifier performs pre-campaign health checks against the
// configured backend adapters.
package verifier

import (
	"context"
	"time"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/domain"
)

// Recommendation is the outcome of a preflight check.
type Recommendation string

const (
	// RecommendProceed means enough backends answered to compare.
	RecommendProceed Recommendation = "proceed"
	// RecommendAbort means fewer than two backends are usable.
	RecommendAbort Recommendation = "abort"
)

// BackendHealth is one adapter's preflight result.
type BackendHealth struct {
	AdapterName string `json:"adapter_name"`
	Reachable   bool   `json:"reachable"`
	LatencyMS   uint64 `json:"latency_ms"`
	Detail      string `json:"detail,omitempty"`
}

// PreflightResult summarizes adapter availability before a campaign.
type PreflightResult struct {
	CheckedAt      string          `json:"checked_at"`
	Backends       []BackendHealth `json:"backends"`
	UsableBackends int             `json:"usable_backends"`
	Recommendation Recommendation  `json:"recommendation"`
}

// Preflight probes every adapter with a GetInfo call and recommends whether
// a differential campaign is worth starting. A backend whose probe fails at
// the transport level is unusable; a protocol-level error still proves the
// backend is answering.
func Preflight(ctx context.Context, adapters []adapter.ProtocolAdapter) PreflightResult {
	probe := &domain.FuzzCase{MethodName: "GetInfo", Parameters: map[string]any{}}

	result := PreflightResult{
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, ad := range adapters {
		start := time.Now()
		res, err := ad.ApplyFuzzCase(ctx, probe)
		health := BackendHealth{
			AdapterName: ad.Name(),
			LatencyMS:   uint64(time.Since(start).Milliseconds()),
		}
		if err != nil {
			health.Detail = err.Error()
		} else {
			health.Reachable = true
			if !res.Success {
				health.Detail = res.Error
			}
			result.UsableBackends++
		}
		result.Backends = append(result.Backends, health)
	}

	result.Recommendation = RecommendAbort
	if result.UsableBackends >= 2 {
		result.Recommendation = RecommendProceed
	}
	return result
}
