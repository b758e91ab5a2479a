package adapter

import (
	"fmt"

	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/domain"
	"github.com/protocol-parity/parity-go/internal/normalize"
	"github.com/protocol-parity/parity-go/internal/ratelimit"
	"github.com/protocol-parity/parity-go/internal/testutil"
)

// FromConfig builds the adapter set for the configured mode. Stub mode
// replays fixture responses through StubAdapters; live mode dials each
// configured JSON-RPC endpoint with a shared rate limiter.
func FromConfig(cfg config.Config) ([]ProtocolAdapter, error) {
	if cfg.Mode == config.ModeLive {
		return liveAdapters(cfg)
	}
	return stubAdapters(cfg)
}

func liveAdapters(cfg config.Config) ([]ProtocolAdapter, error) {
	limiter := ratelimit.NewBackendLimiter(ratelimit.DefaultBackendRates())
	adapters := make([]ProtocolAdapter, 0, len(cfg.Adapters))
	for _, ep := range cfg.Adapters {
		registry, err := loadRegistry(cfg, ep.Kind)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, NewRPCAdapter(ep.Kind, ep.Endpoint, registry, WithLimiter(limiter)))
	}
	return adapters, nil
}

func stubAdapters(cfg config.Config) ([]ProtocolAdapter, error) {
	fixturesDir := cfg.FixturesDir
	if fixturesDir == "" {
		fixturesDir = testutil.GoldenDir()
	}

	// Default stub pair unless endpoints name specific kinds.
	kinds := []domain.AdapterKind{domain.KindCoreLightning, domain.KindLnd}
	if len(cfg.Adapters) > 0 {
		kinds = kinds[:0]
		for _, ep := range cfg.Adapters {
			kinds = append(kinds, ep.Kind)
		}
	}

	adapters := make([]ProtocolAdapter, 0, len(kinds))
	for _, kind := range kinds {
		registry, err := loadRegistry(cfg, kind)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, &testutil.StubAdapter{
			AdapterName: string(kind),
			FixturesDir: fixturesDir,
			Normalizer: func(v any) any {
				normalized, _ := registry.Normalize(v)
				return normalized
			},
		})
	}
	return adapters, nil
}

func loadRegistry(cfg config.Config, kind domain.AdapterKind) (*normalize.Registry, error) {
	if cfg.RulesFile != "" {
		registry, err := normalize.FromFile(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("adapter: load rules %s: %w", cfg.RulesFile, err)
		}
		return registry, nil
	}
	registry, err := normalize.ForAdapter(cfg.PresetDir, kind)
	if err != nil {
		return nil, fmt.Errorf("adapter: load preset for %s: %w", kind, err)
	}
	return registry, nil
}
