package order

import "github.com/vietcart/logistics/internal/domain/shared"

// Status is the aggregate order status.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaymentFailed  Status = "payment_failed"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

// SubStatus is the per-shop sub-order status, the unit of fulfillment.
type SubStatus string

const (
	SubPending         SubStatus = "pending"
	SubConfirmed       SubStatus = "confirmed"
	SubProcessing      SubStatus = "processing"
	SubReadyToShip     SubStatus = "ready_to_ship"
	SubShipping        SubStatus = "shipping"
	SubDelivered       SubStatus = "delivered"
	SubCompleted       SubStatus = "completed"
	SubCancelled       SubStatus = "cancelled"
	SubReturnRequested SubStatus = "return_requested"
	SubReturnApproved  SubStatus = "return_approved"
	SubReturned        SubStatus = "returned"
	SubRefunded        SubStatus = "refunded"
)

// PaymentStatus tracks the payment side of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PayCOD    PaymentMethod = "cod"
	PayMomo   PaymentMethod = "momo"
	PayVNPay  PaymentMethod = "vnpay"
	PayZaloPay PaymentMethod = "zalopay"
)

// subTransitions is the exhaustive sub-order transition table. Any pair
// not listed here is rejected with an InvalidStatusTransition error.
var subTransitions = map[SubStatus][]SubStatus{
	SubPending:         {SubConfirmed, SubCancelled},
	SubConfirmed:       {SubProcessing, SubCancelled},
	SubProcessing:      {SubReadyToShip, SubCancelled},
	SubReadyToShip:     {SubShipping},
	SubShipping:        {SubDelivered},
	SubDelivered:       {SubCompleted, SubReturnRequested},
	SubReturnRequested: {SubReturnApproved, SubCompleted},
	SubReturnApproved:  {SubReturned},
	SubReturned:        {SubRefunded},
}

// CanTransition reports whether from → to is an allowed sub-order move.
func CanTransition(from, to SubStatus) bool {
	for _, next := range subTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a kinded error for a disallowed move.
func ValidateTransition(from, to SubStatus) error {
	if !CanTransition(from, to) {
		return shared.ErrInvalidTransition("sub-order", string(from), string(to))
	}
	return nil
}

// IsSubTerminal reports whether a sub-order has reached a resting state
// that counts toward aggregate completion. Delivered is not terminal:
// the customer still has to confirm receipt or open a return.
func IsSubTerminal(s SubStatus) bool {
	switch s {
	case SubCompleted, SubCancelled, SubRefunded:
		return true
	}
	return false
}
