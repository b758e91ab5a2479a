// Package normalize implements the rule-driven JSON transform used to make
// backend outputs comparable: field renaming, per-backend method-name
// translation, volatile-field elision, and unit conversion.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/protocol-parity/parity-go/internal/domain"
)

// ErrInvalidRule reports a structurally invalid rule in a preset file.
var ErrInvalidRule = errors.New("invalid normalization rule")

// UnitConversion converts a suffixed string amount into a numeric value.
type UnitConversion struct {
	FromPattern string  `json:"from_pattern"`
	ToUnit      string  `json:"to_unit"`
	Factor      float64 `json:"factor"`
}

// Metadata records what a Normalize call changed.
type Metadata struct {
	DroppedFields   []string          `json:"dropped_fields,omitempty"`
	RenamedFields   map[string]string `json:"renamed_fields,omitempty"`
	UnitConversions []string          `json:"unit_conversions,omitempty"`
}

// Registry holds an immutable normalization rule set. It is loaded once at
// process start (or per adapter kind) and must not be mutated concurrently
// with Normalize calls.
type Registry struct {
	fieldMappings   map[string]string
	unitConversions map[string]UnitConversion
	volatileFields  []string
	methodMappings  map[domain.AdapterKind]map[string]string
}

// NewRegistry returns an empty registry. Use the Add* methods to build rule
// sets programmatically (tests), or FromFile/FromPreset to load them.
func NewRegistry() *Registry {
	return &Registry{
		fieldMappings:   make(map[string]string),
		unitConversions: make(map[string]UnitConversion),
		methodMappings:  make(map[domain.AdapterKind]map[string]string),
	}
}

// presetFile is the on-disk shape of a normalization preset.
type presetFile struct {
	FieldMappings   map[string]string            `json:"field_mappings"`
	MethodMappings  map[string]map[string]string `json:"method_mappings"`
	UnitConversions map[string]json.RawMessage   `json:"unit_conversions"`
	VolatileFields  []string                     `json:"volatile_fields"`
}

// FromFile loads a rule set from a JSON preset file. Malformed files fail
// here, before any case is processed.
func FromFile(path string) (*Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("normalize: read rules %s: %w", path, err)
	}

	var preset presetFile
	if err := json.Unmarshal(content, &preset); err != nil {
		return nil, fmt.Errorf("normalize: parse rules %s: %w", path, err)
	}

	r := NewRegistry()
	for from, to := range preset.FieldMappings {
		r.AddFieldMapping(from, to)
	}
	for field, raw := range preset.UnitConversions {
		var conv UnitConversion
		if err := json.Unmarshal(raw, &conv); err != nil {
			return nil, fmt.Errorf("normalize: unit conversion for %q: %w", field, err)
		}
		if conv.Factor == 0 {
			return nil, fmt.Errorf("%w: unit conversion for %q has zero factor", ErrInvalidRule, field)
		}
		r.AddUnitConversion(field, conv)
	}
	for _, field := range preset.VolatileFields {
		r.AddVolatileField(field)
	}
	for rawKind, mappings := range preset.MethodMappings {
		kind, err := domain.ParseAdapterKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("%w: method mappings: %v", ErrInvalidRule, err)
		}
		for canonical, specific := range mappings {
			r.AddMethodMapping(kind, canonical, specific)
		}
	}
	return r, nil
}

// FromPreset loads a named preset from presetDir (<presetDir>/<name>.json).
func FromPreset(presetDir, name string) (*Registry, error) {
	return FromFile(filepath.Join(presetDir, name+".json"))
}

// ForAdapter loads the conventional preset for an adapter kind.
func ForAdapter(presetDir string, kind domain.AdapterKind) (*Registry, error) {
	return FromPreset(presetDir, kind.Preset())
}

// AddFieldMapping registers a rename from a backend-specific field name to
// its canonical name.
func (r *Registry) AddFieldMapping(from, to string) {
	r.fieldMappings[from] = to
}

// AddMethodMapping registers a canonical-to-specific method name for a kind.
func (r *Registry) AddMethodMapping(kind domain.AdapterKind, canonical, specific string) {
	if r.methodMappings[kind] == nil {
		r.methodMappings[kind] = make(map[string]string)
	}
	r.methodMappings[kind][canonical] = specific
}

// AddUnitConversion registers a conversion keyed by post-rename field name.
func (r *Registry) AddUnitConversion(field string, conv UnitConversion) {
	r.unitConversions[field] = conv
}

// AddVolatileField registers a substring pattern whose matching fields are
// dropped during normalization.
func (r *Registry) AddVolatileField(field string) {
	r.volatileFields = append(r.volatileFields, field)
}

// ToAdapterMethod translates a canonical method name to the kind-specific
// name. Unmapped methods pass through unchanged; this never errors.
func (r *Registry) ToAdapterMethod(kind domain.AdapterKind, canonical string) string {
	if mappings, ok := r.methodMappings[kind]; ok {
		if specific, ok := mappings[canonical]; ok {
			return specific
		}
	}
	return canonical
}

// Normalize applies the rule set to a decoded JSON value, returning the
// transformed value and metadata about what changed. Normalization itself
// has no error paths: values that cannot be converted pass through.
func (r *Registry) Normalize(value any) (any, *Metadata) {
	meta := &Metadata{RenamedFields: make(map[string]string)}
	return r.normalizeRecursive(value, "", meta), meta
}

func (r *Registry) normalizeRecursive(value any, path string, meta *Metadata) any {
	switch val := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(val))
		for key, elem := range val {
			fieldPath := key
			if path != "" {
				fieldPath = path + "." + key
			}

			if r.isVolatile(key) {
				meta.DroppedFields = append(meta.DroppedFields, fieldPath)
				continue
			}

			normalizedKey := key
			if canonical, ok := r.fieldMappings[key]; ok && canonical != key {
				normalizedKey = canonical
				meta.RenamedFields[key] = canonical
			}

			normalizedValue := r.normalizeRecursive(elem, fieldPath, meta)

			// Unit conversions key on the post-rename field name.
			normalized[normalizedKey] = r.applyUnitConversion(normalizedKey, normalizedValue, meta)
		}
		return normalized
	case []any:
		normalized := make([]any, len(val))
		for i, elem := range val {
			normalized[i] = r.normalizeRecursive(elem, fmt.Sprintf("%s[%d]", path, i), meta)
		}
		return normalized
	default:
		return value
	}
}

// isVolatile matches as substring in either direction, mirroring the loose
// matching of the rule format.
func (r *Registry) isVolatile(field string) bool {
	for _, volatile := range r.volatileFields {
		if strings.Contains(field, volatile) || strings.Contains(volatile, field) {
			return true
		}
	}
	return false
}

func (r *Registry) applyUnitConversion(field string, value any, meta *Metadata) any {
	conv, ok := r.unitConversions[field]
	if !ok {
		return value
	}
	s, ok := value.(string)
	if !ok || !strings.HasSuffix(s, "msat") {
		return value
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(s, "msat"), 64)
	if err != nil {
		// Best effort: a non-numeric msat string passes through unchanged.
		return value
	}
	converted := uint64(num * conv.Factor)
	meta.UnitConversions = append(meta.UnitConversions, fmt.Sprintf("%s: %s -> %d", field, s, converted))
	return float64(converted)
}
