package shipping

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// Package describes the physical parcel a shipment carries.
type Package struct {
	WeightGrams int
	Value       decimal.Decimal
}

// HistoryEntry is one append-only record in a shipment's status history.
// Extra carries provider-specific fields that have no typed home.
type HistoryEntry struct {
	Status         UnifiedStatus
	ProviderStatus string
	At             time.Time
	Message        string
	Extra          map[string]interface{}
}

// Shipment tracks one physical parcel from pickup to a terminal state.
// Once terminal, only history appends are permitted.
type Shipment struct {
	ID              string
	SubOrderID      string
	TrackingNumber  string
	ProviderCode    string
	ProviderOrderID string
	Status          UnifiedStatus
	PickupAddr      shared.Address
	PickupContact   shared.Contact
	DeliveryAddr    shared.Address
	DeliveryContact shared.Contact
	Package         Package
	CODAmount       decimal.Decimal
	CODCollected    bool
	RetryCount      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PickedUpAt      *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	LastWebhookAt   *time.Time

	History []HistoryEntry
}

// AppendHistory records an entry; history is append-only and permitted in
// every state, terminal included.
func (s *Shipment) AppendHistory(e HistoryEntry) {
	s.History = append(s.History, e)
}

// ApplyStatus reconciles an incoming status against the current one by
// priority. It returns true when the current-status field moved; a lower
// priority update is appended to history only and never downgrades.
func (s *Shipment) ApplyStatus(status UnifiedStatus, providerStatus, message string, at time.Time, extra map[string]interface{}) (bool, error) {
	s.AppendHistory(HistoryEntry{
		Status:         status,
		ProviderStatus: providerStatus,
		At:             at,
		Message:        message,
		Extra:          extra,
	})
	if s.Status.IsTerminal() && s.Status != status {
		// Terminal is reached at most once; late updates are history only.
		return false, nil
	}
	if status.Priority() < s.Status.Priority() {
		return false, nil
	}
	s.Status = status
	s.UpdatedAt = at
	switch status {
	case StatusPickedUp:
		s.PickedUpAt = &at
	case StatusDelivered:
		s.DeliveredAt = &at
	case StatusCancelled:
		s.CancelledAt = &at
	}
	return true, nil
}

// CollectCOD marks cash collected; only valid on a delivered shipment.
func (s *Shipment) CollectCOD() error {
	if s.Status != StatusDelivered {
		return shared.NewError(shared.KindValidation, "COD can only be collected on a delivered shipment")
	}
	s.CODCollected = true
	return nil
}

// HasCOD reports whether cash is due on delivery.
func (s *Shipment) HasCOD() bool {
	return s.CODAmount.IsPositive()
}
