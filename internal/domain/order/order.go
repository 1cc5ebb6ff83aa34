package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// Order is the aggregate created by checkout. It fans out to one SubOrder
// per shop in the cart; fulfillment happens at the sub-order level.
type Order struct {
	ID            string
	UserID        string
	OrderNumber   string
	Subtotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        Status
	ShippingName  string
	ShippingPhone string
	ShippingAddr  shared.Address
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time

	SubOrders []*SubOrder
}

// Validate checks the monetary invariants enforced at creation.
func (o *Order) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"subtotal":      o.Subtotal,
		"shippingTotal": o.ShippingTotal,
		"discountTotal": o.DiscountTotal,
		"grandTotal":    o.GrandTotal,
	} {
		if v.IsNegative() {
			return shared.ErrValidation(name, "must be non-negative")
		}
	}
	want := o.Subtotal.Add(o.ShippingTotal).Sub(o.DiscountTotal)
	if !o.GrandTotal.Equal(want) {
		return shared.ErrValidation("grandTotal", "must equal subtotal + shippingTotal - discountTotal")
	}
	if len(o.SubOrders) == 0 {
		return shared.ErrValidation("subOrders", "order must own at least one sub-order")
	}
	return nil
}

// OwnedBy reports whether the actor may operate on this order. Admin and
// system actors always pass.
func (o *Order) OwnedBy(actor shared.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == shared.RoleCustomer && actor.UserID == o.UserID
}

// MarkPaid applies the PaymentSucceeded transition: payment → paid,
// order → confirmed, every sub-order → pending. The order moves onward
// through StartFulfillment once a shop begins work.
func (o *Order) MarkPaid(now time.Time) error {
	if o.Status != StatusPendingPayment {
		return shared.ErrInvalidTransition("order", string(o.Status), string(StatusConfirmed))
	}
	o.PaymentStatus = PaymentPaid
	o.Status = StatusConfirmed
	o.PaidAt = &now
	o.UpdatedAt = now
	for _, so := range o.SubOrders {
		so.Status = SubPending
		so.UpdatedAt = now
	}
	return nil
}

// StartFulfillment moves a confirmed order into processing the first time
// any shop begins work on one of its slices. The customer cancel window
// closes here.
func (o *Order) StartFulfillment(now time.Time) {
	if o.Status != StatusConfirmed {
		return
	}
	o.Status = StatusProcessing
	o.UpdatedAt = now
}

// MarkPaymentFailed applies the PaymentFailed transition. Stock release is
// the caller's responsibility (it crosses the InventoryPort).
func (o *Order) MarkPaymentFailed(now time.Time) error {
	if o.Status != StatusPendingPayment {
		return shared.ErrInvalidTransition("order", string(o.Status), string(StatusPaymentFailed))
	}
	o.PaymentStatus = PaymentFailed
	o.Status = StatusPaymentFailed
	o.UpdatedAt = now
	return nil
}

// CanCustomerCancel reports whether the customer cancel window is open:
// order still in {pending_payment, confirmed} and every live slice in a
// state the FSM can still cancel.
func (o *Order) CanCustomerCancel() bool {
	if o.Status != StatusPendingPayment && o.Status != StatusConfirmed {
		return false
	}
	for _, so := range o.SubOrders {
		if so.Status == SubCancelled {
			continue
		}
		if !CanTransition(so.Status, SubCancelled) {
			return false
		}
	}
	return true
}

// Cancel cancels the order and every non-terminal sub-order. The refund of
// already-paid non-COD orders is driven by the caller; cancellation itself
// never blocks on refund outcome.
func (o *Order) Cancel(now time.Time) {
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	for _, so := range o.SubOrders {
		if CanTransition(so.Status, SubCancelled) {
			so.Status = SubCancelled
			so.UpdatedAt = now
		}
	}
}

// MarkRefunded records a successful refund after cancellation.
func (o *Order) MarkRefunded(now time.Time) {
	o.Status = StatusRefunded
	o.PaymentStatus = PaymentRefunded
	o.UpdatedAt = now
}

// ReadyToComplete implements the aggregate completion rule: every
// sub-order in {completed, refunded, cancelled} and at least one not
// cancelled. A delivered slice still awaits the customer's receipt
// confirmation, so it keeps the aggregate open.
func (o *Order) ReadyToComplete() bool {
	live := false
	for _, so := range o.SubOrders {
		if !IsSubTerminal(so.Status) {
			return false
		}
		if so.Status != SubCancelled {
			live = true
		}
	}
	return live
}

// Complete marks the order completed. Callers check ReadyToComplete first.
func (o *Order) Complete(now time.Time) {
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
}

// SubOrder returns the sub-order with the given id, or nil.
func (o *Order) SubOrder(id string) *SubOrder {
	for _, so := range o.SubOrders {
		if so.ID == id {
			return so
		}
	}
	return nil
}
