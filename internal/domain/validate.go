package domain

import "fmt"

// ValidationError reports an input value that failed domain validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks the structural invariants of a fuzz case: a non-empty
// method name and non-nil parameter values that round-trip as JSON types.
func (c *FuzzCase) Validate() error {
	if c.MethodName == "" {
		return &ValidationError{Field: "method_name", Value: "", Reason: "must not be empty"}
	}
	for key, val := range c.Parameters {
		if key == "" {
			return &ValidationError{Field: "parameters", Value: key, Reason: "parameter key must not be empty"}
		}
		if !validJSONValue(val) {
			return &ValidationError{
				Field:  "parameters." + key,
				Value:  fmt.Sprintf("%T", val),
				Reason: "unsupported parameter value type",
			}
		}
	}
	return nil
}

func validJSONValue(v any) bool {
	switch val := v.(type) {
	case nil, bool, string, float64, int, int64, uint64:
		return true
	case map[string]any:
		for _, elem := range val {
			if !validJSONValue(elem) {
				return false
			}
		}
		return true
	case []any:
		for _, elem := range val {
			if !validJSONValue(elem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
