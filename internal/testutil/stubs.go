package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/protocol-parity/parity-go/internal/domain"
)

// StubAdapter satisfies adapter.ProtocolAdapter by replaying fixture
// responses from disk. Fixture files are named <adapter>_<method>.json in
// lowercase, e.g. core_lightning_getinfo.json, and hold the raw response
// body. A missing fixture becomes a failed result, which lets fixtures
// model backends that reject a method.
type StubAdapter struct {
	AdapterName string
	FixturesDir string

	// Normalizer is applied by NormalizeOutput when set.
	Normalizer func(any) any
}

func (s *StubAdapter) Name() string { return s.AdapterName }

func (s *StubAdapter) ApplyFuzzCase(_ context.Context, fuzzCase *domain.FuzzCase) (domain.FuzzResult, error) {
	name := fmt.Sprintf("%s_%s.json", s.AdapterName, strings.ToLower(fuzzCase.MethodName))
	data, err := os.ReadFile(filepath.Join(s.FixturesDir, name))
	if err != nil {
		return domain.FuzzResult{
			AdapterName: s.AdapterName,
			Success:     false,
			Error:       fmt.Sprintf(`RPC error: {"code":-32601,"message":"Unknown method: %s"}`, fuzzCase.MethodName),
		}, nil
	}

	var response any
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.FuzzResult{}, fmt.Errorf("testutil: parse fixture %s: %w", name, err)
	}

	return domain.FuzzResult{
		AdapterName: s.AdapterName,
		RawResponse: response,
		Success:     true,
	}, nil
}

func (s *StubAdapter) NormalizeOutput(v any) any {
	if s.Normalizer != nil {
		return s.Normalizer(v)
	}
	return v
}

// GoldenDir returns the absolute path to the tests/golden directory.
// It walks up from the caller's file to find the repo root.
func GoldenDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "golden")
}
