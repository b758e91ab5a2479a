package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/casegen"
	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/domain"
)

func repoRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(filename))
}

func goldenDir() string {
	return filepath.Join(repoRoot(), "tests", "golden")
}

func presetDir() string {
	return filepath.Join(repoRoot(), "resources", "normalization")
}

// TestContractFixturesExist verifies a fixture pair exists for every method.
func TestContractFixturesExist(t *testing.T) {
	t.Parallel()
	for _, backend := range []string{"core_lightning", "lnd"} {
		for _, method := range casegen.LightningMethods {
			name := fmt.Sprintf("%s_%s.json", backend, strings.ToLower(method))
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				path := filepath.Join(goldenDir(), name)
				data, err := os.ReadFile(path)
				require.NoError(t, err, "missing golden fixture: %s", name)

				var body map[string]any
				require.NoError(t, json.Unmarshal(data, &body), "fixture %s is not a JSON object", name)
			})
		}
	}
}

// TestGoldenBackendsAreEquivalent runs every method through both stub
// backends and asserts normalization makes the fixture pairs agree.
func TestGoldenBackendsAreEquivalent(t *testing.T) {
	t.Parallel()
	adapters, err := adapter.FromConfig(config.Config{
		Mode:        config.ModeStub,
		FixturesDir: goldenDir(),
		PresetDir:   presetDir(),
	})
	require.NoError(t, err)
	require.Len(t, adapters, 2)

	analyzer := analysis.New(adapters)
	for _, method := range casegen.LightningMethods {
		t.Run(method, func(t *testing.T) {
			fuzzCase := domain.FuzzCase{MethodName: method, Parameters: map[string]any{}}
			result := analyzer.RunFuzzCase(context.Background(), &fuzzCase)

			assert.True(t, result.Equivalent, "differences: %+v", result.Differences)
			require.Len(t, result.AdapterResults, 2)
			for _, res := range result.AdapterResults {
				assert.True(t, res.Success, "adapter %s failed: %s", res.AdapterName, res.Error)
			}
		})
	}
}

// TestGoldenRunFillsCorpus drives generated cases end to end and checks the
// corpus buckets afterwards.
func TestGoldenRunFillsCorpus(t *testing.T) {
	t.Parallel()
	adapters, err := adapter.FromConfig(config.Config{
		Mode:        config.ModeStub,
		FixturesDir: goldenDir(),
		PresetDir:   presetDir(),
	})
	require.NoError(t, err)

	analyzer := analysis.New(adapters)
	store, err := corpus.New(t.TempDir())
	require.NoError(t, err)

	gen := casegen.New(42)
	const cases = 24
	for i := 0; i < cases; i++ {
		fuzzCase := gen.Next()
		result := analyzer.RunFuzzCase(context.Background(), &fuzzCase)
		require.NoError(t, store.ProcessResult(&result))
		assert.True(t, result.Equivalent, "method %s diverged: %+v", fuzzCase.MethodName, result.Differences)
	}

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Divergences)
	assert.Equal(t, 0, stats.Crashes)
	// Distinct cases only; repeated parameter draws may collide on case ID.
	assert.Greater(t, stats.StableCases, 0)
	assert.LessOrEqual(t, stats.StableCases, cases)
}
