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

// CodeGHTK is the provider code for Giao Hàng Tiết Kiệm.
const CodeGHTK = "ghtk"

const (
	ghtkBaseURL    = "https://services.giaohangtietkiem.vn"
	ghtkSandboxURL = "https://services-staging.ghtklab.com"
)

// ghtkStatuses maps GHTK status_id tokens to the unified set.
var ghtkStatuses = map[string]shipping.UnifiedStatus{
	"1": shipping.StatusCreated,
	"2": shipping.StatusPickedUp,
	"3": shipping.StatusDelivering,
	"4": shipping.StatusDelivered,
	"5": shipping.StatusFailed,
	"6": shipping.StatusReturning,
	"7": shipping.StatusReturned,
	"8": shipping.StatusCancelled,
}

// GHTK integrates Giao Hàng Tiết Kiệm. Webhooks carry a numeric status_id
// and are signed with HMAC-SHA256 over the raw body.
type GHTK struct {
	creds     shipping.Credentials
	transport *carrierTransport
	clock     shared.Clock
	logger    *zap.Logger
}

// NewGHTK builds the adapter for one shop's credentials
func NewGHTK(creds shipping.Credentials, retry config.RetryConfig, sandbox bool, clock shared.Clock, logger *zap.Logger) *GHTK {
	base := ghtkBaseURL
	if sandbox || creds.Sandbox {
		base = ghtkSandboxURL
	}
	return &GHTK{
		creds: creds,
		transport: newCarrierTransport(base, retry.MaxAttempts, retry.BackoffBase, clock, map[string]string{
			"Token": creds.APIKey,
		}),
		clock:  clock,
		logger: logger,
	}
}

func (g *GHTK) Code() string { return CodeGHTK }

// CalculateFee quotes a shipment
func (g *GHTK) CalculateFee(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	body := map[string]interface{}{
		"pick_province":    req.PickupAddr.City,
		"pick_district":    req.PickupAddr.District,
		"province":         req.DeliveryAddr.City,
		"district":         req.DeliveryAddr.District,
		"weight":           req.Package.WeightGrams,
		"value":            req.Package.Value.IntPart(),
		"transport":        "road",
		"deliver_option":   "none",
		"tags":             []int{},
		"cod":              req.CODAmount.IntPart(),
	}

	var resp struct {
		Success bool `json:"success"`
		Fee     struct {
			Fee          int64 `json:"fee"`
			InsuranceFee int64 `json:"insurance_fee"`
			DeliverDays  int   `json:"deliver_days"`
		} `json:"fee"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/services/shipment/fee", body, &resp); err != nil {
		return nil, fmt.Errorf("ghtk fee quote: %w", err)
	}
	if !resp.Success {
		return nil, shared.NewError(shared.KindProviderError, "ghtk declined fee quote: %s", resp.Message)
	}

	return &shipping.FeeQuote{
		ProviderCode:  CodeGHTK,
		Fee:           decimal.NewFromInt(resp.Fee.Fee + resp.Fee.InsuranceFee),
		EstimatedDays: resp.Fee.DeliverDays,
		QuotedAt:      g.clock.Now(),
	}, nil
}

// CreateOrder registers a shipment with GHTK
func (g *GHTK) CreateOrder(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error) {
	body := map[string]interface{}{
		"order": map[string]interface{}{
			"id":            req.SubOrderID,
			"pick_name":     req.PickupContact.Name,
			"pick_tel":      req.PickupContact.Phone,
			"pick_address":  req.PickupAddr.Line,
			"pick_province": req.PickupAddr.City,
			"pick_district": req.PickupAddr.District,
			"name":          req.DeliveryContact.Name,
			"tel":           req.DeliveryContact.Phone,
			"address":       req.DeliveryAddr.Line,
			"province":      req.DeliveryAddr.City,
			"district":      req.DeliveryAddr.District,
			"ward":          req.DeliveryAddr.Ward,
			"hamlet":        "Khác",
			"weight_option": "gram",
			"total_weight":  req.Package.WeightGrams,
			"pick_money":    req.CODAmount.IntPart(),
			"value":         req.Package.Value.IntPart(),
			"note":          req.Note,
		},
	}

	var resp struct {
		Success bool `json:"success"`
		Order   struct {
			LabelID     string `json:"label"`
			TrackingID  string `json:"tracking_id"`
			Fee         int64  `json:"fee"`
			EstimatedPick string `json:"estimated_pick_time"`
		} `json:"order"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "POST", "/services/shipment/order", body, &resp); err != nil {
		return nil, fmt.Errorf("ghtk create order: %w", err)
	}
	if !resp.Success {
		return nil, shared.NewError(shared.KindProviderError, "ghtk rejected order: %s", resp.Message)
	}

	result := &shipping.CreateResult{
		TrackingNumber:  resp.Order.TrackingID,
		ProviderOrderID: resp.Order.LabelID,
		Fee:             decimal.NewFromInt(resp.Order.Fee),
	}
	if resp.Order.TrackingID == "" && resp.Order.LabelID != "" {
		// Some GHTK responses only carry the label; it doubles as the
		// tracking reference.
		result.TrackingNumber = resp.Order.LabelID
	}
	return result, nil
}

// CancelOrder cancels a registered shipment
func (g *GHTK) CancelOrder(ctx context.Context, providerOrderID string) error {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	path := "/services/shipment/cancel/" + providerOrderID
	if err := g.transport.request(ctx, "POST", path, map[string]interface{}{}, &resp); err != nil {
		return fmt.Errorf("ghtk cancel order: %w", err)
	}
	if !resp.Success {
		return shared.NewError(shared.KindProviderError, "ghtk refused cancellation: %s", resp.Message)
	}
	return nil
}

// GetTracking fetches the live shipment status
func (g *GHTK) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	var resp struct {
		Success bool `json:"success"`
		Order   struct {
			LabelID  string `json:"label_id"`
			StatusID int    `json:"status"`
			Message  string `json:"message"`
			Modified string `json:"modified"`
		} `json:"order"`
		Message string `json:"message"`
	}
	path := "/services/shipment/v2/" + trackingNumber
	if err := g.transport.request(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("ghtk tracking: %w", err)
	}
	if !resp.Success {
		return nil, shared.NewError(shared.KindProviderError, "ghtk tracking failed: %s", resp.Message)
	}

	token := strconv.Itoa(resp.Order.StatusID)
	info := &shipping.TrackingInfo{
		TrackingNumber: trackingNumber,
		Status:         normalizeStatus(ghtkStatuses, CodeGHTK, token, g.logger),
		ProviderStatus: token,
		Description:    resp.Order.Message,
		UpdatedAt:      g.clock.Now(),
	}
	if t, err := time.Parse("2006-01-02 15:04:05", resp.Order.Modified); err == nil {
		info.UpdatedAt = t
	}
	return info, nil
}

// ValidateWebhook checks the HMAC-SHA256 signature over the raw body
func (g *GHTK) ValidateWebhook(payload []byte, signature string) error {
	return VerifySignature(g.creds.APISecret, payload, signature)
}

// ParseWebhookPayload normalizes a GHTK callback
func (g *GHTK) ParseWebhookPayload(payload []byte) (*shipping.WebhookEvent, error) {
	var raw struct {
		LabelID    string `json:"label_id"`
		PartnerID  string `json:"partner_id"`
		StatusID   int    `json:"status_id"`
		ActionTime string `json:"action_time"`
		Reason     string `json:"reason"`
	}
	if err := unmarshalWebhook(payload, &raw); err != nil {
		return nil, err
	}
	if raw.LabelID == "" {
		return nil, shared.ErrValidation("label_id", "missing")
	}

	token := strconv.Itoa(raw.StatusID)
	at := g.clock.Now()
	if t, err := time.Parse(time.RFC3339, raw.ActionTime); err == nil {
		at = t
	}

	return &shipping.WebhookEvent{
		ProviderCode:    CodeGHTK,
		ProviderOrderID: raw.LabelID,
		Status:          normalizeStatus(ghtkStatuses, CodeGHTK, token, g.logger),
		ProviderStatus:  token,
		Message:         raw.Reason,
		At:              at,
	}, nil
}

// TestConnection verifies the shop token against the carrier
func (g *GHTK) TestConnection(ctx context.Context) error {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := g.transport.request(ctx, "GET", "/services/authenticated", nil, &resp); err != nil {
		return fmt.Errorf("ghtk connection test: %w", err)
	}
	if !resp.Success {
		return shared.NewError(shared.KindProviderError, "ghtk authentication failed: %s", resp.Message)
	}
	return nil
}
