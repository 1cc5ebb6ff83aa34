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

func testGHTK(t *testing.T) (*GHTK, *shared.MockClock) {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC))
	g := NewGHTK(
		shipping.Credentials{APIKey: "key", APISecret: "hook-secret"},
		config.RetryConfig{MaxAttempts: 1},
		false, clock, zap.NewNop(),
	)
	return g, clock
}

func TestGHTKParseWebhookPayload(t *testing.T) {
	g, clock := testGHTK(t)

	t.Run("delivered callback", func(t *testing.T) {
		ev, err := g.ParseWebhookPayload([]byte(`{
			"label_id": "S1.A2.123",
			"partner_id": "sub-9",
			"status_id": 4,
			"action_time": "2026-08-12T07:30:00+07:00",
			"reason": ""
		}`))
		require.NoError(t, err)

		assert.Equal(t, CodeGHTK, ev.ProviderCode)
		assert.Equal(t, "S1.A2.123", ev.ProviderOrderID)
		assert.Equal(t, shipping.StatusDelivered, ev.Status)
		assert.Equal(t, "4", ev.ProviderStatus)
		want, _ := time.Parse(time.RFC3339, "2026-08-12T07:30:00+07:00")
		assert.True(t, ev.At.Equal(want))
	})

	t.Run("delivering callback", func(t *testing.T) {
		ev, err := g.ParseWebhookPayload([]byte(`{"label_id":"L1","status_id":3}`))
		require.NoError(t, err)
		assert.Equal(t, shipping.StatusDelivering, ev.Status)
	})

	t.Run("failed delivery carries the reason", func(t *testing.T) {
		ev, err := g.ParseWebhookPayload([]byte(`{"label_id":"L1","status_id":5,"reason":"khách không nghe máy"}`))
		require.NoError(t, err)
		assert.Equal(t, shipping.StatusFailed, ev.Status)
		assert.Equal(t, "khách không nghe máy", ev.Message)
	})

	t.Run("unknown status degrades to created", func(t *testing.T) {
		ev, err := g.ParseWebhookPayload([]byte(`{"label_id":"L1","status_id":99}`))
		require.NoError(t, err)
		assert.Equal(t, shipping.StatusCreated, ev.Status)
		assert.Equal(t, "99", ev.ProviderStatus)
	})

	t.Run("missing action time falls back to the clock", func(t *testing.T) {
		ev, err := g.ParseWebhookPayload([]byte(`{"label_id":"L1","status_id":2}`))
		require.NoError(t, err)
		assert.Equal(t, clock.Now(), ev.At)
	})

	t.Run("missing label rejected", func(t *testing.T) {
		_, err := g.ParseWebhookPayload([]byte(`{"status_id":4}`))
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := g.ParseWebhookPayload([]byte(`{not json`))
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestGHTKValidateWebhook(t *testing.T) {
	g, _ := testGHTK(t)
	payload := []byte(`{"label_id":"L1","status_id":4}`)

	assert.NoError(t, g.ValidateWebhook(payload, SignPayload("hook-secret", payload)))
	assert.Error(t, g.ValidateWebhook(payload, "bogus"))
}

func TestGHTKStatusMapCoversUnifiedSet(t *testing.T) {
	seen := map[shipping.UnifiedStatus]bool{}
	for _, s := range ghtkStatuses {
		seen[s] = true
	}
	for _, s := range []shipping.UnifiedStatus{
		shipping.StatusCreated, shipping.StatusPickedUp, shipping.StatusDelivering,
		shipping.StatusDelivered, shipping.StatusFailed, shipping.StatusReturning,
		shipping.StatusReturned, shipping.StatusCancelled,
	} {
		assert.True(t, seen[s], "no ghtk token maps to %s", s)
	}
}
