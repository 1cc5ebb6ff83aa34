package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) (*carrierTransport, *shared.MockClock) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	clock := shared.NewMockClock(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC))
	return newCarrierTransport(srv.URL, 3, time.Second, clock, map[string]string{"Token": "tok"}), clock
}

func TestTransportRetriesServerErrors(t *testing.T) {
	var calls int32
	tr, clock := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	start := clock.Now()
	var out struct {
		OK bool `json:"ok"`
	}
	err := tr.request(context.Background(), "GET", "/ping", nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	// backoff slept 1s then 2s
	assert.Equal(t, 3*time.Second, clock.Now().Sub(start))
}

func TestTransportGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := tr.request(context.Background(), "GET", "/ping", nil, nil)
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.True(t, shared.IsKind(err, shared.KindProviderError))
}

func TestTransportRetriesRateLimit(t *testing.T) {
	var calls int32
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	})

	require.NoError(t, tr.request(context.Background(), "GET", "/ping", nil, nil))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestTransportDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid district"}`))
	})

	err := tr.request(context.Background(), "POST", "/fee", map[string]string{}, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "4xx is a carrier rejection, never retried")
	assert.Contains(t, err.Error(), "invalid district")
}

func TestTransportSendsConfiguredHeaders(t *testing.T) {
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{}`))
	})

	require.NoError(t, tr.request(context.Background(), "POST", "/x", map[string]string{"a": "b"}, nil))
}

func TestTransportStopsOnCancelledContext(t *testing.T) {
	var calls int32
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.request(ctx, "GET", "/ping", nil, nil)
	require.Error(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
