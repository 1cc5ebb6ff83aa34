package provider

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/pkg/utils"
)

// CodeInHouse is the provider code of the VietCart Express fleet.
const CodeInHouse = "inhouse"

// trackingPrefix for in-house tracking numbers.
const trackingPrefix = "VCE"

// In-house flat fee table in VND by route scope, plus a per-kilogram
// surcharge beyond the first kilogram.
var (
	feeSameDistrict = decimal.NewFromInt(15000)
	feeSameCity     = decimal.NewFromInt(22000)
	feeSameRegion   = decimal.NewFromInt(30000)
	feeCrossRegion  = decimal.NewFromInt(45000)
	feePerExtraKg   = decimal.NewFromInt(5000)
)

// InHouse is the provider adapter for the company's own fleet. Fees are
// computed locally, creation mints a tracking number and leaves assignment
// to the dispatcher, and tracking reads the shipment store directly. There
// is no webhook surface; status flows in from the shipper client.
type InHouse struct {
	shipments shipping.ShipmentRepository
	clock     shared.Clock
}

// NewInHouse builds the in-house provider
func NewInHouse(shipments shipping.ShipmentRepository, clock shared.Clock) *InHouse {
	return &InHouse{shipments: shipments, clock: clock}
}

func (p *InHouse) Code() string { return CodeInHouse }

// CalculateFee quotes from the flat route table. Never fails, which is what
// makes it usable as the aggregation fallback.
func (p *InHouse) CalculateFee(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	fee := feeCrossRegion
	days := 5
	switch {
	case req.PickupAddr.RouteKey() == req.DeliveryAddr.RouteKey():
		fee, days = feeSameDistrict, 1
	case strings.EqualFold(req.PickupAddr.City, req.DeliveryAddr.City):
		fee, days = feeSameCity, 1
	case req.PickupAddr.Region == req.DeliveryAddr.Region:
		fee, days = feeSameRegion, 2
	}

	if extra := (req.Package.WeightGrams - 1000) / 1000; extra > 0 {
		fee = fee.Add(feePerExtraKg.Mul(decimal.NewFromInt(int64(extra))))
	}

	return &shipping.FeeQuote{
		ProviderCode:  CodeInHouse,
		Fee:           fee,
		EstimatedDays: days,
		QuotedAt:      p.clock.Now(),
	}, nil
}

// CreateOrder mints the tracking number; shipper assignment happens in the
// dispatcher, not here.
func (p *InHouse) CreateOrder(ctx context.Context, req shipping.CreateRequest) (*shipping.CreateResult, error) {
	tn := utils.GenerateTrackingNumber(trackingPrefix, p.clock.Now())
	return &shipping.CreateResult{
		TrackingNumber:  tn,
		ProviderOrderID: tn,
	}, nil
}

// CancelOrder is a no-op; in-house cancellation is handled by the shipment
// lifecycle and the dispatcher releasing the assigned legs.
func (p *InHouse) CancelOrder(ctx context.Context, providerOrderID string) error {
	return nil
}

// GetTracking reads the shipment store
func (p *InHouse) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	s, err := p.shipments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	info := &shipping.TrackingInfo{
		TrackingNumber: trackingNumber,
		Status:         s.Status,
		ProviderStatus: string(s.Status),
		Description:    s.Status.Display(),
		UpdatedAt:      s.UpdatedAt,
	}
	if n := len(s.History); n > 0 {
		info.Description = s.History[n-1].Message
		info.UpdatedAt = s.History[n-1].At
	}
	return info, nil
}

// ValidateWebhook always rejects; the fleet has no webhook surface.
func (p *InHouse) ValidateWebhook(payload []byte, signature string) error {
	return shared.NewError(shared.KindInvalidProvider, "in-house provider has no webhook surface")
}

// ParseWebhookPayload always rejects; the fleet has no webhook surface.
func (p *InHouse) ParseWebhookPayload(payload []byte) (*shipping.WebhookEvent, error) {
	return nil, shared.NewError(shared.KindInvalidProvider, "in-house provider has no webhook surface")
}

// TestConnection is trivially healthy
func (p *InHouse) TestConnection(ctx context.Context) error {
	return nil
}
