package dispatch

import "context"

// ShipperRepository is the persistence port for the shipper roster.
//
// TryAcquireLeg is the correctness boundary of dispatch: it performs the
// conditional increment (`counter + 1 <= cap`) in one statement and
// reports false when the row no longer satisfies the cap, which signals
// the dispatcher to move to the next candidate.
type ShipperRepository interface {
	FindByID(ctx context.Context, id string) (*Shipper, error)
	FindByUserID(ctx context.Context, userID string) (*Shipper, error)
	ListByOffice(ctx context.Context, officeID string) ([]*Shipper, error)
	TryAcquireLeg(ctx context.Context, shipperID string, kind LegKind) (bool, error)
	ReleaseLeg(ctx context.Context, shipperID string, kind LegKind) error
	SetPresence(ctx context.Context, shipperID string, online, available bool) error
	UpdateLocation(ctx context.Context, shipperID string, lat, lng float64) error
	// ResetDailyCounters zeroes the leg counters of a region's shippers.
	// day is the region-local YYYY-MM-DD date; resets are idempotent per
	// (region, day).
	ResetDailyCounters(ctx context.Context, region, day string) (int64, error)
}

// PostOfficeRepository is the persistence port for the office network.
type PostOfficeRepository interface {
	FindByID(ctx context.Context, id string) (*PostOffice, error)
	ListLocal(ctx context.Context) ([]*PostOffice, error)
	FindRegionalHub(ctx context.Context, region string) (*PostOffice, error)
}
