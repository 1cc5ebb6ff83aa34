package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// CodeViettelPost is the provider code for Viettel Post.
const CodeViettelPost = "viettelpost"

const (
	vtpBaseURL    = "https://partner.viettelpost.vn/v2"
	vtpSandboxURL = "https://partnerdev.viettelpost.vn/v2"
)

// vtpStatuses maps Viettel Post ORDER_STATUS tokens to the unified set.
var vtpStatuses = map[string]shipping.UnifiedStatus{
	"100": shipping.StatusCreated,
	"102": shipping.StatusAssigned,
	"103": shipping.StatusAssigned,
	"104": shipping.StatusPickedUp,
	"200": shipping.StatusDelivering,
	"300": shipping.StatusDelivering,
	"320": shipping.StatusDelivering,
	"500": shipping.StatusDelivered,
	"501": shipping.StatusDelivered,
	"502": shipping.StatusReturning,
	"503": shipping.StatusReturned,
	"504": shipping.StatusReturned,
	"505": shipping.StatusFailed,
	"507": shipping.StatusCancelled,
	"201": shipping.StatusCancelled,
}

// ViettelPost integrates Viettel Post's partner API.
type ViettelPost struct {
	creds     shipping.Credentials
	transport *carrierTransport
	clock     shared.Clock
	logger    *zap.Logger
}

// NewViettelPost builds the adapter for one shop's credentials
func NewViettelPost(creds shipping.Credentials, retry config.RetryConfig, sandbox bool, clock shared.Clock, logger *zap.Logger) *ViettelPost {
	base := vtpBaseURL
	if sandbox || creds.Sandbox {
		base = vtpSandboxURL
	}
	return &ViettelPost{
		creds: creds,
		transport: newCarrierTransport(base, retry.MaxAttempts, retry.BackoffBase, clock, map[string]string{
			"Token": creds.APIKey,
		}),
		clock:  clock,
		logger: logger,
	}
}

func (v *ViettelPost) Code() string { return CodeViettelPost }

// CalculateFee quotes a shipment
func (v *ViettelPost) CalculateFee(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	body := map[string]interface{}{
		"SENDER_PROVINCE":   req.PickupAddr.City,
		"SENDER_DISTRICT":   req.PickupAddr.District,
		"RECEIVER_PROVINCE": req.DeliveryAddr.City,
		"RECEIVER_DISTRICT": req.DeliveryAddr.District,
		"PRODUCT_WEIGHT":    req.Package.WeightGrams,
		"PRODUCT_PRICE":     req.Package.Value.IntPart(),
		"MONEY_COLLECTION":  req.CODAmount.IntPart(),
		"ORDER_SERVICE":     "VCN",
		"TYPE":              1,
	}

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			MoneyTotal   int64 `json:"MONEY_TOTAL"`
			KpiHT        float64 `json:"KPI_HT"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := v.transport.request(ctx, "POST", "/order/getPrice", body, &resp); err != nil {
		return nil, fmt.Errorf("viettelpost fee quote: %w", err)
	}
	if resp.Status != 200 {
		return nil, shared.NewError(shared.KindProviderError, "viettelpost declined fee quote: %s", resp.Message)
	}

	days := int(resp.Data.KpiHT/24) + 1
	return &shipping.FeeQuote{
		ProviderCode:  CodeViettelPost,
		Fee:           decimal.NewFromInt(resp.Data.MoneyTotal),
		EstimatedDays: days,
		QuotedAt:      v.clock.Now(),
	}, nil
}

// CreateOrder registers a shipment with Viettel Post
func (v *ViettelPost) CreateOrder(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error) {
	body := map[string]interface{}{
		"ORDER_NUMBER":      req.SubOrderID,
		"SENDER_FULLNAME":   req.PickupContact.Name,
		"SENDER_PHONE":      req.PickupContact.Phone,
		"SENDER_ADDRESS":    req.PickupAddr.Line,
		"SENDER_PROVINCE":   req.PickupAddr.City,
		"SENDER_DISTRICT":   req.PickupAddr.District,
		"RECEIVER_FULLNAME": req.DeliveryContact.Name,
		"RECEIVER_PHONE":    req.DeliveryContact.Phone,
		"RECEIVER_ADDRESS":  req.DeliveryAddr.Line,
		"RECEIVER_PROVINCE": req.DeliveryAddr.City,
		"RECEIVER_DISTRICT": req.DeliveryAddr.District,
		"PRODUCT_WEIGHT":    req.Package.WeightGrams,
		"PRODUCT_PRICE":     req.Package.Value.IntPart(),
		"MONEY_COLLECTION":  req.CODAmount.IntPart(),
		"ORDER_SERVICE":     "VCN",
		"ORDER_NOTE":        req.Note,
	}

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			OrderNumber string `json:"ORDER_NUMBER"`
			MoneyTotal  int64  `json:"MONEY_TOTAL"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := v.transport.request(ctx, "POST", "/order/createOrder", body, &resp); err != nil {
		return nil, fmt.Errorf("viettelpost create order: %w", err)
	}
	if resp.Status != 200 {
		return nil, shared.NewError(shared.KindProviderError, "viettelpost rejected order: %s", resp.Message)
	}

	return &shipping.CreateResult{
		TrackingNumber:  resp.Data.OrderNumber,
		ProviderOrderID: resp.Data.OrderNumber,
		Fee:             decimal.NewFromInt(resp.Data.MoneyTotal),
	}, nil
}

// CancelOrder cancels a registered shipment
func (v *ViettelPost) CancelOrder(ctx context.Context, providerOrderID string) error {
	body := map[string]interface{}{
		"TYPE":         4,
		"ORDER_NUMBER": providerOrderID,
		"NOTE":         "huy don",
	}
	var resp struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := v.transport.request(ctx, "POST", "/order/UpdateOrder", body, &resp); err != nil {
		return fmt.Errorf("viettelpost cancel order: %w", err)
	}
	if resp.Status != 200 {
		return shared.NewError(shared.KindProviderError, "viettelpost refused cancellation: %s", resp.Message)
	}
	return nil
}

// GetTracking fetches the live shipment status
func (v *ViettelPost) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	var resp struct {
		Status int `json:"status"`
		Data   struct {
			OrderStatus     int    `json:"ORDER_STATUS"`
			OrderStatusDate string `json:"ORDER_STATUSDATE"`
			Note            string `json:"NOTE"`
		} `json:"data"`
		Message string `json:"message"`
	}
	path := "/order/getOrderStatus?ORDER_NUMBER=" + trackingNumber
	if err := v.transport.request(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("viettelpost tracking: %w", err)
	}
	if resp.Status != 200 {
		return nil, shared.NewError(shared.KindProviderError, "viettelpost tracking failed: %s", resp.Message)
	}

	token := strconv.Itoa(resp.Data.OrderStatus)
	info := &shipping.TrackingInfo{
		TrackingNumber: trackingNumber,
		Status:         normalizeStatus(vtpStatuses, CodeViettelPost, token, v.logger),
		ProviderStatus: token,
		Description:    resp.Data.Note,
		UpdatedAt:      v.clock.Now(),
	}
	if t, err := time.Parse("02/01/2006 15:04:05", resp.Data.OrderStatusDate); err == nil {
		info.UpdatedAt = t
	}
	return info, nil
}

// ValidateWebhook checks the HMAC-SHA256 signature over the raw body
func (v *ViettelPost) ValidateWebhook(payload []byte, signature string) error {
	return VerifySignature(v.creds.APISecret, payload, signature)
}

// ParseWebhookPayload normalizes a Viettel Post callback
func (v *ViettelPost) ParseWebhookPayload(payload []byte) (*shipping.WebhookEvent, error) {
	var raw struct {
		Data struct {
			OrderNumber string `json:"ORDER_NUMBER"`
			OrderStatus int    `json:"ORDER_STATUS"`
			StatusName  string `json:"STATUS_NAME"`
			OrderDate   string `json:"ORDER_STATUSDATE"`
		} `json:"DATA"`
	}
	if err := unmarshalWebhook(payload, &raw); err != nil {
		return nil, err
	}
	if raw.Data.OrderNumber == "" {
		return nil, shared.ErrValidation("ORDER_NUMBER", "missing")
	}

	token := strconv.Itoa(raw.Data.OrderStatus)
	at := v.clock.Now()
	if t, err := time.Parse("02/01/2006 15:04:05", raw.Data.OrderDate); err == nil {
		at = t
	}

	return &shipping.WebhookEvent{
		ProviderCode:    CodeViettelPost,
		ProviderOrderID: raw.Data.OrderNumber,
		TrackingNumber:  raw.Data.OrderNumber,
		Status:          normalizeStatus(vtpStatuses, CodeViettelPost, token, v.logger),
		ProviderStatus:  token,
		Message:         raw.Data.StatusName,
		At:              at,
	}, nil
}

// TestConnection verifies the partner token
func (v *ViettelPost) TestConnection(ctx context.Context) error {
	var resp struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := v.transport.request(ctx, "GET", "/categories/listService", nil, &resp); err != nil {
		return fmt.Errorf("viettelpost connection test: %w", err)
	}
	if resp.Status != 200 {
		return shared.NewError(shared.KindProviderError, "viettelpost authentication failed: %s", resp.Message)
	}
	return nil
}
