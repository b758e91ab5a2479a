package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterKind_Valid(t *testing.T) {
	t.Parallel()
	for _, k := range []AdapterKind{KindBitcoinCore, KindCoreLightning, KindLnd, KindRustLightning} {
		assert.True(t, k.Valid(), "kind %s should be valid", k)
	}
	assert.False(t, AdapterKind("floresta").Valid())
	assert.False(t, AdapterKind("").Valid())
}

func TestAdapterKind_Preset(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bitcoin", KindBitcoinCore.Preset())
	assert.Equal(t, "lightning", KindCoreLightning.Preset())
	assert.Equal(t, "lightning", KindLnd.Preset())
	assert.Equal(t, "lightning", KindRustLightning.Preset())
}

func TestParseAdapterKind_Unknown_ReturnsValidationError(t *testing.T) {
	t.Parallel()
	_, err := ParseAdapterKind("eclair")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "adapter_kind", verr.Field)
	assert.Equal(t, "eclair", verr.Value)
}

func TestParseAdapterKind_Known(t *testing.T) {
	t.Parallel()
	k, err := ParseAdapterKind("lnd")
	require.NoError(t, err)
	assert.Equal(t, KindLnd, k)
}
