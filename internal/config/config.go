// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/protocol-parity/parity-go/internal/domain"
)

// Mode determines whether adapters replay fixture responses or call live nodes.
type Mode string

const (
	ModeStub Mode = "stub"
	ModeLive Mode = "live"
)

// AdapterEndpoint binds a backend kind to its JSON-RPC endpoint URL.
type AdapterEndpoint struct {
	Kind     domain.AdapterKind
	Endpoint string
}

// Config holds all application configuration.
type Config struct {
	Mode        Mode
	FixturesDir string
	ArtifactDir string

	// Normalization rules: either an explicit rules file or a preset name
	// resolved against PresetDir.
	RulesFile string
	PresetDir string
	Preset    string

	Adapters []AdapterEndpoint
	FuzzSeed uint64

	LogLevel string
	JSONLogs bool

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	OIDCIssuer   string
	OIDCAudience string

	// Telemetry.
	OTelEnabled  bool
	CWNamespace  string
	TemporalHost string
	TemporalNS   string
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	adapters, err := parseAdapters(os.Getenv("PARITY_ADAPTERS"))
	if err != nil {
		return Config{}, err
	}

	seed, err := parseSeed(envOr("FUZZ_SEED", "42"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mode:         Mode(envOr("PARITY_MODE", "stub")),
		FixturesDir:  os.Getenv("FIXTURES_DIR"),
		ArtifactDir:  envOr("ARTIFACT_DIR", "/corpus_data"),
		RulesFile:    os.Getenv("PARITY_RULES_FILE"),
		PresetDir:    envOr("PARITY_PRESET_DIR", "resources/normalization"),
		Preset:       envOr("PARITY_PRESET", "lightning"),
		Adapters:     adapters,
		FuzzSeed:     seed,
		LogLevel:     envOr("PARITY_LOG_LEVEL", "info"),
		JSONLogs:     envBool("PARITY_JSON_LOGS", false),
		APIPort:      envOr("PARITY_API_PORT", "8080"),
		CORSOrigins:  parseCORSOrigins(os.Getenv("PARITY_CORS_ORIGINS")),
		OIDCIssuer:   os.Getenv("PARITY_OIDC_ISSUER"),
		OIDCAudience: os.Getenv("PARITY_OIDC_AUDIENCE"),
		OTelEnabled:  envBool("PARITY_OTEL_ENABLED", false),
		CWNamespace:  envOr("PARITY_CW_NAMESPACE", "Parity/Fuzzing"),
		TemporalHost: envOr("TEMPORAL_HOST", "localhost:7233"),
		TemporalNS:   envOr("TEMPORAL_NAMESPACE", "default"),
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeLive {
		return Config{}, fmt.Errorf("config: invalid PARITY_MODE %q (must be stub or live)", cfg.Mode)
	}

	if cfg.Mode == ModeLive && len(cfg.Adapters) == 0 {
		return Config{}, fmt.Errorf("config: PARITY_ADAPTERS required in live mode")
	}

	return cfg, nil
}

// parseAdapters parses "kind=url,kind=url" pairs.
func parseAdapters(raw string) ([]AdapterEndpoint, error) {
	if raw == "" {
		return nil, nil
	}
	var endpoints []AdapterEndpoint
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kind, endpoint, found := strings.Cut(pair, "=")
		if !found || endpoint == "" {
			return nil, fmt.Errorf("config: invalid PARITY_ADAPTERS entry %q (want kind=url)", pair)
		}
		parsed, err := domain.ParseAdapterKind(strings.TrimSpace(kind))
		if err != nil {
			return nil, fmt.Errorf("config: PARITY_ADAPTERS: %w", err)
		}
		endpoints = append(endpoints, AdapterEndpoint{Kind: parsed, Endpoint: strings.TrimSpace(endpoint)})
	}
	return endpoints, nil
}

func parseSeed(raw string) (uint64, error) {
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid FUZZ_SEED %q: %w", raw, err)
	}
	return seed, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
