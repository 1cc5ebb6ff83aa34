package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"label_id":"L1","status_id":4}`)
	sig := SignPayload("webhook-secret", payload)

	require.NoError(t, VerifySignature("webhook-secret", payload, sig))

	t.Run("mismatched signature", func(t *testing.T) {
		err := VerifySignature("webhook-secret", payload, "deadbeef")
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindInvalidSignature))
	})

	t.Run("empty signature", func(t *testing.T) {
		err := VerifySignature("webhook-secret", payload, "")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := VerifySignature("other-secret", payload, sig)
		assert.Error(t, err)
	})

	t.Run("payload tampering", func(t *testing.T) {
		err := VerifySignature("webhook-secret", []byte(`{"label_id":"L1","status_id":8}`), sig)
		assert.Error(t, err)
	})
}
