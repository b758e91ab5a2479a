// Package analysis executes fuzz cases against every configured backend
// adapter concurrently and classifies the comparison outcome.
package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/domain"
)

// Difference is one semantic divergence between two adapters' outputs.
type Difference struct {
	FieldPath string `json:"field_path"`
	ValueA    any    `json:"value_a"`
	ValueB    any    `json:"value_b"`
	AdapterA  string `json:"adapter_a"`
	AdapterB  string `json:"adapter_b"`
}

// DifferentialResult is the outcome of comparing all adapters' normalized
// outputs for one fuzz case. Invariant: Equivalent == len(Differences)==0.
type DifferentialResult struct {
	FuzzCase       domain.FuzzCase     `json:"fuzz_case"`
	AdapterResults []domain.FuzzResult `json:"adapter_results"`
	Equivalent     bool                `json:"equivalent"`
	Differences    []Difference        `json:"differences"`
	Summary        string              `json:"summary"`
}

// Analyzer runs one fuzz case through every configured adapter and compares
// the normalized results pairwise.
type Analyzer struct {
	adapters []adapter.ProtocolAdapter
}

// New creates an Analyzer over the given ordered adapter list.
func New(adapters []adapter.ProtocolAdapter) *Analyzer {
	return &Analyzer{adapters: adapters}
}

// AdapterCount returns the number of configured adapters.
func (a *Analyzer) AdapterCount() int { return len(a.adapters) }

// Adapters returns the configured adapter list in dispatch order.
func (a *Analyzer) Adapters() []adapter.ProtocolAdapter { return a.adapters }

// RunFuzzCase dispatches the case to all adapters concurrently, waits for
// every result (join, not race), then compares. Adapter execution errors
// become failed FuzzResults rather than aborting the run, and the result
// order always matches the configured adapter order.
func (a *Analyzer) RunFuzzCase(ctx context.Context, fuzzCase *domain.FuzzCase) DifferentialResult {
	results := make([]domain.FuzzResult, len(a.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, ad := range a.adapters {
		clone := fuzzCase.Clone()
		g.Go(func() error {
			start := time.Now()
			result, err := ad.ApplyFuzzCase(gctx, &clone)
			if err != nil {
				result = domain.FuzzResult{
					AdapterName: ad.Name(),
					Success:     false,
					Error:       err.Error(),
				}
			}
			result.ExecutionTimeMS = uint64(time.Since(start).Milliseconds())
			if result.Error != "" {
				result.NormalizedError = domain.ClassifyError(result.Error)
			}
			results[i] = result
			return nil
		})
	}
	// Goroutines never return errors; failures are synthesized results.
	_ = g.Wait()

	differences := a.compareOutputs(results)
	equivalent := len(differences) == 0

	summary := fmt.Sprintf("all %d adapters produced equivalent results", len(results))
	if !equivalent {
		summary = fmt.Sprintf("found %d semantic differences between %d adapters", len(differences), len(results))
	}

	return DifferentialResult{
		FuzzCase:       fuzzCase.Clone(),
		AdapterResults: results,
		Equivalent:     equivalent,
		Differences:    differences,
		Summary:        summary,
	}
}

// compareOutputs compares every (i, j) pair with i<j and returns the
// non-cosmetic differences.
func (a *Analyzer) compareOutputs(results []domain.FuzzResult) []Difference {
	var all []Difference
	if len(results) < 2 {
		return all
	}

	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			resA, resB := results[i], results[j]

			// Diverging success flags short-circuit body comparison.
			if resA.Success != resB.Success {
				all = append(all, Difference{
					FieldPath: "success",
					ValueA:    resA.Success,
					ValueB:    resB.Success,
					AdapterA:  resA.AdapterName,
					AdapterB:  resB.AdapterName,
				})
				continue
			}

			if !resA.Success {
				// Both failed: equivalent error categories are not a divergence.
				if resA.NormalizedError.IsEquivalent(resB.NormalizedError) {
					continue
				}
				if resA.Error != resB.Error {
					all = append(all, Difference{
						FieldPath: "error",
						ValueA:    errorValue(resA.Error),
						ValueB:    errorValue(resB.Error),
						AdapterA:  resA.AdapterName,
						AdapterB:  resB.AdapterName,
					})
				}
				continue
			}

			// Both succeeded: each body goes through its own adapter's normalizer.
			normA := a.adapters[i].NormalizeOutput(resA.RawResponse)
			normB := a.adapters[j].NormalizeOutput(resB.RawResponse)

			for _, diff := range compareValues(normA, normB, "") {
				diff.AdapterA = resA.AdapterName
				diff.AdapterB = resB.AdapterName
				all = append(all, diff)
			}
		}
	}

	filtered := all[:0]
	for _, diff := range all {
		if !isCosmeticField(diff.FieldPath) {
			filtered = append(filtered, diff)
		}
	}
	return filtered
}

func errorValue(errStr string) any {
	if errStr == "" {
		return nil
	}
	return errStr
}
