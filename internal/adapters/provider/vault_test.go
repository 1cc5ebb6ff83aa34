package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shipping"
)

func TestVaultRoundTrip(t *testing.T) {
	vault, err := NewVault("test-secret")
	require.NoError(t, err)

	creds := shipping.Credentials{
		APIKey:    "key-123",
		APISecret: "secret-456",
		ShopCode:  "S0001",
		Sandbox:   true,
	}

	blob, err := vault.Encrypt(creds)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "key-123", "blob must not leak plaintext")

	got, err := vault.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestVaultRandomizedIV(t *testing.T) {
	vault, err := NewVault("test-secret")
	require.NoError(t, err)

	creds := shipping.Credentials{APIKey: "key"}
	a, err := vault.Encrypt(creds)
	require.NoError(t, err)
	b, err := vault.Encrypt(creds)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same plaintext must encrypt differently")
}

func TestVaultRejectsBadBlobs(t *testing.T) {
	vault, err := NewVault("test-secret")
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		_, err := vault.Decrypt([]byte("short"))
		assert.Error(t, err)
	})

	t.Run("unaligned length", func(t *testing.T) {
		_, err := vault.Decrypt(make([]byte, 33))
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		blob, err := vault.Encrypt(shipping.Credentials{APIKey: "key"})
		require.NoError(t, err)
		blob[len(blob)-1] ^= 0xFF
		_, err = vault.Decrypt(blob)
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		blob, err := vault.Encrypt(shipping.Credentials{APIKey: "key"})
		require.NoError(t, err)

		other, err := NewVault("different-secret")
		require.NoError(t, err)
		_, err = other.Decrypt(blob)
		assert.Error(t, err)
	})
}

func TestNewVaultRequiresSecret(t *testing.T) {
	_, err := NewVault("")
	assert.Error(t, err)
}
