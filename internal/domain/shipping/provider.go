package shipping

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// FeeRequest asks a provider to quote a shipment before it exists.
type FeeRequest struct {
	ShopID       string
	PickupAddr   shared.Address
	DeliveryAddr shared.Address
	Package      Package
	CODAmount    decimal.Decimal
}

// FeeQuote is one provider's answer. Fallback marks the in-house quote
// produced when every enabled provider failed; Stale marks a cached quote
// returned past a provider outage.
type FeeQuote struct {
	ProviderCode  string
	Fee           decimal.Decimal
	EstimatedDays int
	Fallback      bool
	QuotedAt      time.Time
}

// FeeFailure is a per-provider failure surfaced alongside successes so the
// caller can render partial options. Never delivered as an error.
type FeeFailure struct {
	ProviderCode string
	Reason       string
}

// CreateRequest asks a provider to register a shipment.
type CreateRequest struct {
	ShopID          string
	SubOrderID      string
	PickupAddr      shared.Address
	PickupContact   shared.Contact
	DeliveryAddr    shared.Address
	DeliveryContact shared.Contact
	Package         Package
	CODAmount       decimal.Decimal
	Note            string
}

// CreateResult is the provider's acknowledgment. TrackingNumber must be
// non-empty; the facade rejects providers that violate this.
type CreateResult struct {
	TrackingNumber  string
	ProviderOrderID string
	Fee             decimal.Decimal
	ExpectedPickup  *time.Time
}

// TrackingInfo is the normalized read-model for a tracking number. Stale
// marks a cached snapshot returned because the provider is down; Err then
// carries the underlying failure.
type TrackingInfo struct {
	TrackingNumber string
	Status         UnifiedStatus
	ProviderStatus string
	Description    string
	UpdatedAt      time.Time
	Stale          bool
	Err            string
}

// WebhookEvent is a provider callback normalized into unified terms.
type WebhookEvent struct {
	ProviderCode    string
	ProviderOrderID string
	TrackingNumber  string
	Status          UnifiedStatus
	ProviderStatus  string
	Message         string
	At              time.Time
	Extra           map[string]interface{}
}

// Dedupe returns the idempotency key for webhook processing.
func (e WebhookEvent) Dedupe() string {
	return e.ProviderCode + "|" + e.ProviderOrderID + "|" + string(e.Status) + "|" + e.At.UTC().Format(time.RFC3339)
}

// Provider is the capability contract every carrier adapter implements,
// in-house included. Implementations are constructed per shop with that
// shop's decrypted credentials.
type Provider interface {
	Code() string
	CalculateFee(ctx context.Context, req FeeRequest) (*FeeQuote, error)
	CreateOrder(ctx context.Context, req CreateRequest) (*CreateResult, error)
	CancelOrder(ctx context.Context, providerOrderID string) error
	GetTracking(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
	ValidateWebhook(payload []byte, signature string) error
	ParseWebhookPayload(payload []byte) (*WebhookEvent, error)
	TestConnection(ctx context.Context) error
}

// Credentials is the decrypted per-shop provider configuration.
type Credentials struct {
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	ShopCode  string `json:"shop_code,omitempty"`
	Sandbox   bool   `json:"sandbox,omitempty"`
}

// ProviderConfig is the per-(shop, provider) record. EncryptedCredentials
// is the blob as stored; Credentials is only populated after vault decrypt.
type ProviderConfig struct {
	ShopID               string
	ProviderCode         string
	EncryptedCredentials []byte
	Credentials          Credentials
	IsEnabled            bool
	IsDefault            bool
	UpdatedAt            time.Time
}
