package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 7 * 24 * time.Hour

// SubOrder is the per-shop slice of an Order and the unit every shipment
// and tracking event hangs off.
type SubOrder struct {
	ID             string
	OrderID        string
	ShopID         string
	Subtotal       decimal.Decimal
	ShippingFee    decimal.Decimal
	Total          decimal.Decimal
	Status         SubStatus
	ShipperID      string
	ReturnDeadline *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeliveredAt    *time.Time

	Items []*Item
}

// Item is the immutable product snapshot taken at checkout.
type Item struct {
	ID         string
	SubOrderID string
	ProductID  string
	VariantID  string
	Name       string
	SKU        string
	UnitPrice  decimal.Decimal
	Quantity   int
	TotalPrice decimal.Decimal
	Image      string
}

// OwnedByShop reports whether a partner actor controls this sub-order.
func (s *SubOrder) OwnedByShop(actor shared.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == shared.RolePartner && actor.ShopID == s.ShopID
}

// Transition applies a validated status move and stamps the update time.
func (s *SubOrder) Transition(to SubStatus, now time.Time) error {
	if err := ValidateTransition(s.Status, to); err != nil {
		return err
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// MarkDelivered moves to delivered and opens the 7-day return window.
func (s *SubOrder) MarkDelivered(now time.Time) error {
	if err := s.Transition(SubDelivered, now); err != nil {
		return err
	}
	deadline := now.Add(ReturnWindow)
	s.DeliveredAt = &now
	s.ReturnDeadline = &deadline
	return nil
}

// RequestReturn validates the return window before transitioning.
func (s *SubOrder) RequestReturn(now time.Time) error {
	if s.ReturnDeadline != nil && now.After(*s.ReturnDeadline) {
		return shared.ErrValidation("returnDeadline", "return window has closed")
	}
	return s.Transition(SubReturnRequested, now)
}
