package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// CodeGHN is the provider code for Giao Hàng Nhanh.
const CodeGHN = "ghn"

const (
	ghnBaseURL    = "https://online-gateway.ghn.vn/shiip/public-api"
	ghnSandboxURL = "https://dev-online-gateway.ghn.vn/shiip/public-api"
)

// ghnStatuses maps GHN string tokens to the unified set.
var ghnStatuses = map[string]shipping.UnifiedStatus{
	"ready_to_pick":  shipping.StatusCreated,
	"picking":        shipping.StatusAssigned,
	"picked":         shipping.StatusPickedUp,
	"storing":        shipping.StatusPickedUp,
	"transporting":   shipping.StatusDelivering,
	"delivering":     shipping.StatusDelivering,
	"delivered":      shipping.StatusDelivered,
	"delivery_fail":  shipping.StatusFailed,
	"waiting_to_return": shipping.StatusReturning,
	"return":         shipping.StatusReturning,
	"returning":      shipping.StatusReturning,
	"returned":       shipping.StatusReturned,
	"cancel":         shipping.StatusCancelled,
}

// GHN integrates Giao Hàng Nhanh's public API. Every call carries the shop
// token plus the numeric ShopId issued per seller.
type GHN struct {
	creds     shipping.Credentials
	transport *carrierTransport
	clock     shared.Clock
	logger    *zap.Logger
}

// NewGHN builds the adapter for one shop's credentials
func NewGHN(creds shipping.Credentials, retry config.RetryConfig, sandbox bool, clock shared.Clock, logger *zap.Logger) *GHN {
	base := ghnBaseURL
	if sandbox || creds.Sandbox {
		base = ghnSandboxURL
	}
	return &GHN{
		creds: creds,
		transport: newCarrierTransport(base, retry.MaxAttempts, retry.BackoffBase, clock, map[string]string{
			"Token":  creds.APIKey,
			"ShopId": creds.ShopCode,
		}),
		clock:  clock,
		logger: logger,
	}
}

func (g *GHN) Code() string { return CodeGHN }

// CalculateFee quotes a shipment
func (g *GHN) CalculateFee(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	body := map[string]interface{}{
		"from_district": req.PickupAddr.District,
		"from_province": req.PickupAddr.City,
		"to_district":   req.DeliveryAddr.District,
		"to_province":   req.DeliveryAddr.City,
		"to_ward":       req.DeliveryAddr.Ward,
		"weight":        req.Package.WeightGrams,
		"insurance_value": req.Package.Value.IntPart(),
		"cod_value":     req.CODAmount.IntPart(),
		"service_type_id": 2,
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/v2/shipping-order/fee", body, &resp); err != nil {
		return nil, fmt.Errorf("ghn fee quote: %w", err)
	}
	if resp.Code != 200 {
		return nil, shared.NewError(shared.KindProviderError, "ghn declined fee quote: %s", resp.Message)
	}

	return &shipping.FeeQuote{
		ProviderCode:  CodeGHN,
		Fee:           decimal.NewFromInt(resp.Data.Total),
		EstimatedDays: 2,
		QuotedAt:      g.clock.Now(),
	}, nil
}

// CreateOrder registers a shipment with GHN
func (g *GHN) CreateOrder(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error) {
	body := map[string]interface{}{
		"client_order_code": req.SubOrderID,
		"from_name":         req.PickupContact.Name,
		"from_phone":        req.PickupContact.Phone,
		"from_address":      req.PickupAddr.Line,
		"from_district":     req.PickupAddr.District,
		"from_province":     req.PickupAddr.City,
		"to_name":           req.DeliveryContact.Name,
		"to_phone":          req.DeliveryContact.Phone,
		"to_address":        req.DeliveryAddr.Line,
		"to_ward_name":      req.DeliveryAddr.Ward,
		"to_district_name":  req.DeliveryAddr.District,
		"to_province_name":  req.DeliveryAddr.City,
		"weight":            req.Package.WeightGrams,
		"insurance_value":   req.Package.Value.IntPart(),
		"cod_amount":        req.CODAmount.IntPart(),
		"note":              req.Note,
		"service_type_id":   2,
		"payment_type_id":   1,
		"required_note":     "KHONGCHOXEMHANG",
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			OrderCode    string `json:"order_code"`
			TotalFee     int64  `json:"total_fee"`
			ExpectedTime string `json:"expected_delivery_time"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/v2/shipping-order/create", body, &resp); err != nil {
		return nil, fmt.Errorf("ghn create order: %w", err)
	}
	if resp.Code != 200 {
		return nil, shared.NewError(shared.KindProviderError, "ghn rejected order: %s", resp.Message)
	}

	return &shipping.CreateResult{
		TrackingNumber:  resp.Data.OrderCode,
		ProviderOrderID: resp.Data.OrderCode,
		Fee:             decimal.NewFromInt(resp.Data.TotalFee),
	}, nil
}

// CancelOrder cancels a registered shipment
func (g *GHN) CancelOrder(ctx context.Context, providerOrderID string) error {
	body := map[string]interface{}{
		"order_codes": []string{providerOrderID},
	}
	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/v2/switch-status/cancel", body, &resp); err != nil {
		return fmt.Errorf("ghn cancel order: %w", err)
	}
	if resp.Code != 200 {
		return shared.NewError(shared.KindProviderError, "ghn refused cancellation: %s", resp.Message)
	}
	return nil
}

// GetTracking fetches the live shipment status
func (g *GHN) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	body := map[string]interface{}{
		"order_code": trackingNumber,
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Status      string `json:"status"`
			UpdatedDate string `json:"updated_date"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/v2/shipping-order/detail", body, &resp); err != nil {
		return nil, fmt.Errorf("ghn tracking: %w", err)
	}
	if resp.Code != 200 {
		return nil, shared.NewError(shared.KindProviderError, "ghn tracking failed: %s", resp.Message)
	}

	info := &shipping.TrackingInfo{
		TrackingNumber: trackingNumber,
		Status:         normalizeStatus(ghnStatuses, CodeGHN, resp.Data.Status, g.logger),
		ProviderStatus: resp.Data.Status,
		UpdatedAt:      g.clock.Now(),
	}
	if t, err := time.Parse(time.RFC3339, resp.Data.UpdatedDate); err == nil {
		info.UpdatedAt = t
	}
	return info, nil
}

// ValidateWebhook checks the HMAC-SHA256 signature over the raw body
func (g *GHN) ValidateWebhook(payload []byte, signature string) error {
	return VerifySignature(g.creds.APISecret, payload, signature)
}

// ParseWebhookPayload normalizes a GHN callback
func (g *GHN) ParseWebhookPayload(payload []byte) (*shipping.WebhookEvent, error) {
	var raw struct {
		OrderCode string `json:"OrderCode"`
		Status    string `json:"Status"`
		Time      string `json:"Time"`
		Reason    string `json:"Reason"`
	}
	if err := unmarshalWebhook(payload, &raw); err != nil {
		return nil, err
	}
	if raw.OrderCode == "" {
		return nil, shared.ErrValidation("OrderCode", "missing")
	}

	at := g.clock.Now()
	if t, err := time.Parse(time.RFC3339, raw.Time); err == nil {
		at = t
	}

	return &shipping.WebhookEvent{
		ProviderCode:    CodeGHN,
		ProviderOrderID: raw.OrderCode,
		TrackingNumber:  raw.OrderCode,
		Status:          normalizeStatus(ghnStatuses, CodeGHN, raw.Status, g.logger),
		ProviderStatus:  raw.Status,
		Message:         raw.Reason,
		At:              at,
	}, nil
}

// TestConnection verifies the shop token against the carrier
func (g *GHN) TestConnection(ctx context.Context) error {
	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "GET", "/v2/shop/all", nil, &resp); err != nil {
		return fmt.Errorf("ghn connection test: %w", err)
	}
	if resp.Code != 200 {
		return shared.NewError(shared.KindProviderError, "ghn authentication failed: %s", resp.Message)
	}
	return nil
}
