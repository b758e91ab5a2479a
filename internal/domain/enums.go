package domain

// AdapterKind identifies a backend implementation family. It selects the
// method-name mapping table and the normalization preset for that backend.
type AdapterKind string

const (
	KindBitcoinCore   AdapterKind = "bitcoin_core"
	KindCoreLightning AdapterKind = "core_lightning"
	KindLnd           AdapterKind = "lnd"
	KindRustLightning AdapterKind = "rust_lightning"
)

func (k AdapterKind) Valid() bool {
	switch k {
	case KindBitcoinCore, KindCoreLightning, KindLnd, KindRustLightning:
		return true
	}
	return false
}

// Preset returns the conventional normalization preset name for the kind.
func (k AdapterKind) Preset() string {
	if k == KindBitcoinCore {
		return "bitcoin"
	}
	return "lightning"
}

// ParseAdapterKind validates a raw kind string. Unknown kinds return a
// ValidationError to the caller; they never abort a comparison run.
func ParseAdapterKind(raw string) (AdapterKind, error) {
	k := AdapterKind(raw)
	if !k.Valid() {
		return "", &ValidationError{Field: "adapter_kind", Value: raw, Reason: "unknown adapter kind"}
	}
	return k, nil
}
