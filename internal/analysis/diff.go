package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// cosmeticFields are path substrings excluded from equivalence checks because
// they are expected to vary between implementations.
var cosmeticFields = []string{"timestamp", "id", "signature", "nonce", "created_at", "updated_at"}

func isCosmeticField(path string) bool {
	for _, field := range cosmeticFields {
		if strings.Contains(path, field) {
			return true
		}
	}
	return false
}

// compareValues structurally diffs two normalized JSON values. Objects
// compare the union of their keys (a missing key shows as null on that
// side); arrays of unequal length produce exactly one difference carrying
// both lengths; equal-length arrays recurse per index; scalars differ iff
// unequal. Adapter attribution is filled in by the caller.
func compareValues(a, b any, path string) []Difference {
	var differences []Difference

	objA, okA := a.(map[string]any)
	objB, okB := b.(map[string]any)
	if okA && okB {
		keys := unionKeys(objA, objB)
		for _, key := range keys {
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}

			valA, inA := objA[key]
			valB, inB := objB[key]
			switch {
			case inA && inB:
				differences = append(differences, compareValues(valA, valB, childPath)...)
			case inA:
				differences = append(differences, Difference{FieldPath: childPath, ValueA: valA, ValueB: nil})
			default:
				differences = append(differences, Difference{FieldPath: childPath, ValueA: nil, ValueB: valB})
			}
		}
		return differences
	}

	arrA, okA := a.([]any)
	arrB, okB := b.([]any)
	if okA && okB {
		if len(arrA) != len(arrB) {
			// One difference for the whole array, not one per missing element.
			return []Difference{{FieldPath: path, ValueA: len(arrA), ValueB: len(arrB)}}
		}
		for i := range arrA {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			differences = append(differences, compareValues(arrA[i], arrB[i], childPath)...)
		}
		return differences
	}

	if !scalarEqual(a, b) {
		return []Difference{{FieldPath: path, ValueA: a, ValueB: b}}
	}
	return differences
}

// unionKeys returns the sorted union of both objects' keys, so difference
// ordering is deterministic.
func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for key := range a {
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for key := range b {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// scalarEqual compares two non-object, non-array JSON values. Mixed types
// (including an object or array on only one side) are unequal.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch valA := a.(type) {
	case string:
		valB, ok := b.(string)
		return ok && valA == valB
	case float64:
		valB, ok := b.(float64)
		return ok && valA == valB
	case bool:
		valB, ok := b.(bool)
		return ok && valA == valB
	default:
		// Non-JSON scalar types (test fixtures with ints) and container
		// kind mismatches land here; maps and slices never compare equal.
		return a == b
	}
}
