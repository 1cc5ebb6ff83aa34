package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

func testRegistry(t *testing.T) (*Registry, *Vault) {
	t.Helper()
	vault, err := NewVault("registry-test-secret")
	require.NoError(t, err)
	clock := shared.NewMockClock(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	cfg := &config.ProvidersConfig{Retry: config.RetryConfig{MaxAttempts: 3, BackoffBase: time.Second}}
	return NewRegistry(cfg, vault, NewInHouse(nil, clock), clock, zap.NewNop()), vault
}

func TestRegistryKnowsEveryCarrier(t *testing.T) {
	r, _ := testRegistry(t)

	for _, code := range []string{CodeGHTK, CodeGHN, CodeViettelPost, CodeInHouse} {
		assert.True(t, r.Known(code), code)
	}
	assert.True(t, r.Known("GHTK"), "codes are case-insensitive")
	assert.False(t, r.Known("dhl"))
	assert.Len(t, r.Codes(), 4)
}

func TestRegistryBuild(t *testing.T) {
	r, vault := testRegistry(t)

	t.Run("decrypts stored credentials", func(t *testing.T) {
		blob, err := vault.Encrypt(shipping.Credentials{APIKey: "key", APISecret: "secret"})
		require.NoError(t, err)

		p, err := r.Build(&shipping.ProviderConfig{ProviderCode: CodeGHTK, EncryptedCredentials: blob})
		require.NoError(t, err)
		assert.Equal(t, CodeGHTK, p.Code())
	})

	t.Run("credential-free build for the in-house fleet", func(t *testing.T) {
		p, err := r.Build(&shipping.ProviderConfig{ProviderCode: CodeInHouse})
		require.NoError(t, err)
		assert.Equal(t, CodeInHouse, p.Code())
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := r.Build(&shipping.ProviderConfig{ProviderCode: "dhl"})
		assert.True(t, shared.IsKind(err, shared.KindInvalidProvider))
	})

	t.Run("blob from another vault rejected", func(t *testing.T) {
		other, err := NewVault("different-secret")
		require.NoError(t, err)
		blob, err := other.Encrypt(shipping.Credentials{APIKey: "key"})
		require.NoError(t, err)

		_, err = r.Build(&shipping.ProviderConfig{ProviderCode: CodeGHN, EncryptedCredentials: blob})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindProviderInitFailed))
	})
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r, _ := testRegistry(t)
	clock := shared.NewMockClock(time.Time{})

	r.Register("GHTK", func(shipping.Credentials) (shipping.Provider, error) {
		return NewInHouse(nil, clock), nil
	})
	p, err := r.Build(&shipping.ProviderConfig{ProviderCode: "ghtk"})
	require.NoError(t, err)
	assert.Equal(t, CodeInHouse, p.Code(), "a re-registered factory replaces the stock one")
}
