package dispatch

import (
	"time"
)

// ShipperStatus is the account state of an in-house shipper.
type ShipperStatus string

const (
	ShipperPending   ShipperStatus = "pending"
	ShipperActive    ShipperStatus = "active"
	ShipperSuspended ShipperStatus = "suspended"
	ShipperInactive  ShipperStatus = "inactive"
)

// LegKind distinguishes which daily counter a leg consumes.
type LegKind string

const (
	LegPickup   LegKind = "pickup"
	LegDelivery LegKind = "delivery"
)

// Shipper is an in-house courier attached to a post office. The two leg
// counters are mutated only by the dispatcher; online/available flags only
// by the shipper client.
type Shipper struct {
	ID                   string
	UserID               string
	PostOfficeID         string
	Vehicle              string
	Status               ShipperStatus
	IsOnline             bool
	IsAvailable          bool
	Lat                  float64
	Lng                  float64
	CurrentPickupCount   int
	CurrentDeliveryCount int
	MaxDailyOrders       int
	AvgRating            float64
	CompletedCount       int
	FailedCount          int
	LastSeenAt           time.Time
}

// Eligible reports whether the shipper can take one more leg of the given
// kind right now. The DB-side conditional increment is the correctness
// boundary; this is the in-memory pre-filter.
func (s *Shipper) Eligible(kind LegKind) bool {
	if s.Status != ShipperActive || !s.IsOnline || !s.IsAvailable {
		return false
	}
	return s.CurrentPickupCount+s.CurrentDeliveryCount < s.MaxDailyOrders
}

// CounterFor returns the current value of the counter a leg kind consumes.
func (s *Shipper) CounterFor(kind LegKind) int {
	if kind == LegPickup {
		return s.CurrentPickupCount
	}
	return s.CurrentDeliveryCount
}
