package helpers

import (
	"context"
	"sync"

	"github.com/vietcart/logistics/internal/domain/shipping"
)

// MockProvider is a scriptable carrier adapter. Leave a field nil to get
// the zero-effort success behavior.
type MockProvider struct {
	ProviderCode string

	FeeFn      func(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error)
	CreateFn   func(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error)
	CancelFn   func(ctx context.Context, providerOrderID string) error
	TrackFn    func(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error)
	ValidateFn func(payload []byte, signature string) error
	ParseFn    func(payload []byte) (*shipping.WebhookEvent, error)
	TestFn     func(ctx context.Context) error

	mu    sync.Mutex
	calls map[string]int
}

// NewMockProvider creates a provider fake answering to code
func NewMockProvider(code string) *MockProvider {
	return &MockProvider{ProviderCode: code, calls: make(map[string]int)}
}

// Factory returns a registry factory handing out this instance.
func (m *MockProvider) Factory() func(shipping.Credentials) (shipping.Provider, error) {
	return func(shipping.Credentials) (shipping.Provider, error) { return m, nil }
}

// Calls reports how often one operation was invoked.
func (m *MockProvider) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockProvider) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
}

func (m *MockProvider) Code() string { return m.ProviderCode }

func (m *MockProvider) CalculateFee(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	m.record("calculate_fee")
	if m.FeeFn != nil {
		return m.FeeFn(ctx, req)
	}
	return &shipping.FeeQuote{ProviderCode: m.ProviderCode, EstimatedDays: 2}, nil
}

func (m *MockProvider) CreateOrder(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error) {
	m.record("create_order")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	return &shipping.CreateResult{
		TrackingNumber:  m.ProviderCode + "-" + req.SubOrderID,
		ProviderOrderID: "ext-" + req.SubOrderID,
	}, nil
}

func (m *MockProvider) CancelOrder(ctx context.Context, providerOrderID string) error {
	m.record("cancel_order")
	if m.CancelFn != nil {
		return m.CancelFn(ctx, providerOrderID)
	}
	return nil
}

func (m *MockProvider) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	m.record("get_tracking")
	if m.TrackFn != nil {
		return m.TrackFn(ctx, trackingNumber)
	}
	return &shipping.TrackingInfo{TrackingNumber: trackingNumber, Status: shipping.StatusCreated}, nil
}

func (m *MockProvider) ValidateWebhook(payload []byte, signature string) error {
	m.record("validate_webhook")
	if m.ValidateFn != nil {
		return m.ValidateFn(payload, signature)
	}
	return nil
}

func (m *MockProvider) ParseWebhookPayload(payload []byte) (*shipping.WebhookEvent, error) {
	m.record("parse_webhook")
	if m.ParseFn != nil {
		return m.ParseFn(payload)
	}
	return &shipping.WebhookEvent{ProviderCode: m.ProviderCode}, nil
}

func (m *MockProvider) TestConnection(ctx context.Context) error {
	m.record("test_connection")
	if m.TestFn != nil {
		return m.TestFn(ctx)
	}
	return nil
}
