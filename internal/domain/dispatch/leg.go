package dispatch

import "github.com/vietcart/logistics/internal/domain/shared"

// Leg is one physical movement of a parcel between two points of the
// in-house network (or between a customer and an office).
type Leg struct {
	Kind         LegKind
	FromOfficeID string
	ToOfficeID   string
	// NeedsShipper is false for hub-to-hub line-haul legs, which move on
	// scheduled trucks rather than individual couriers.
	NeedsShipper bool
	// OfficeID is the roster the shipper for this leg is drawn from.
	OfficeID string
}

// PlanLegs builds the leg chain for a shipment given the resolved pickup
// and delivery offices. Same-region parcels take two legs; cross-region
// parcels route through each region's hub.
func PlanLegs(pickup, delivery *PostOffice) []Leg {
	if pickup.Region == delivery.Region {
		return []Leg{
			{Kind: LegPickup, ToOfficeID: pickup.ID, NeedsShipper: true, OfficeID: pickup.ID},
			{Kind: LegDelivery, FromOfficeID: delivery.ID, NeedsShipper: true, OfficeID: delivery.ID},
		}
	}
	return []Leg{
		{Kind: LegPickup, ToOfficeID: pickup.ID, NeedsShipper: true, OfficeID: pickup.ID},
		{Kind: LegPickup, FromOfficeID: pickup.ID, ToOfficeID: pickup.ParentID, NeedsShipper: false},
		{Kind: LegDelivery, FromOfficeID: pickup.ParentID, ToOfficeID: delivery.ParentID, NeedsShipper: false},
		{Kind: LegDelivery, FromOfficeID: delivery.ParentID, ToOfficeID: delivery.ID, NeedsShipper: false},
		{Kind: LegDelivery, FromOfficeID: delivery.ID, NeedsShipper: true, OfficeID: delivery.ID},
	}
}

// CrossRegion reports whether the shipment needs hub routing.
func CrossRegion(pickup, delivery shared.Region) bool {
	return pickup != delivery
}
