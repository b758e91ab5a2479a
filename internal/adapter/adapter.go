// Package adapter defines the boundary between the differential engine and
// backend node implementations, plus a JSON-RPC-over-HTTP adapter.
package adapter

import (
	"context"

	"github.com/protocol-parity/parity-go/internal/domain"
)

// ProtocolAdapter is the only coupling between the differential engine and
// a backend. Protocol-level failures (bad params, unknown method) are data:
// they come back as a FuzzResult with Success=false. Only transport-level
// failures (unreachable process, serialization bug) return a Go error.
type ProtocolAdapter interface {
	// Name returns the stable adapter identifier used in results and diffs.
	Name() string

	// ApplyFuzzCase invokes the backend with the given case.
	ApplyFuzzCase(ctx context.Context, c *domain.FuzzCase) (domain.FuzzResult, error)

	// NormalizeOutput applies this backend's normalization rules to a
	// decoded JSON value before comparison.
	NormalizeOutput(v any) any
}
