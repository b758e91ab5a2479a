// Package domain defines the shared types for differential fuzzing:
// fuzz cases, per-adapter results, and normalized error classification.
package domain

// FuzzCase is one synthetic request replayed identically against every
// backend adapter. Parameter values are decoded JSON (string, float64,
// bool, nil, map[string]any, []any). Cases are created by a generator and
// consumed read-only; use Clone before handing one to concurrent callers.
type FuzzCase struct {
	MethodName         string         `json:"method_name"`
	Parameters         map[string]any `json:"parameters"`
	ExpectedResultType string         `json:"expected_result_type,omitempty"`
}

// Clone returns a deep copy of the case. Each adapter receives its own
// clone so no shared mutable state exists during concurrent dispatch.
func (c *FuzzCase) Clone() FuzzCase {
	params := make(map[string]any, len(c.Parameters))
	for k, v := range c.Parameters {
		params[k] = deepCopyValue(v)
	}
	return FuzzCase{
		MethodName:         c.MethodName,
		Parameters:         params,
		ExpectedResultType: c.ExpectedResultType,
	}
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[k] = deepCopyValue(elem)
		}
		return m
	case []any:
		arr := make([]any, len(val))
		for i, elem := range val {
			arr[i] = deepCopyValue(elem)
		}
		return arr
	default:
		// Scalars (string, float64, bool, nil) are immutable.
		return v
	}
}

// FuzzResult is the outcome of applying one fuzz case to one adapter.
// Protocol-level failures are data, not errors: they arrive here with
// Success=false and an Error string, and participate in comparison like
// any other outcome.
type FuzzResult struct {
	AdapterName     string           `json:"adapter_name"`
	RawResponse     any              `json:"raw_response"`
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
	NormalizedError *NormalizedError `json:"normalized_error,omitempty"`
	ExecutionTimeMS uint64           `json:"execution_time_ms"`
}
