package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func activeShipper(id string) *Shipper {
	return &Shipper{
		ID:             id,
		Status:         ShipperActive,
		IsOnline:       true,
		IsAvailable:    true,
		MaxDailyOrders: 20,
		AvgRating:      4.5,
		LastSeenAt:     time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC),
	}
}

func TestShipperEligible(t *testing.T) {
	s := activeShipper("sh-1")
	assert.True(t, s.Eligible(LegPickup))

	t.Run("suspended", func(t *testing.T) {
		s := activeShipper("sh-1")
		s.Status = ShipperSuspended
		assert.False(t, s.Eligible(LegPickup))
	})

	t.Run("offline", func(t *testing.T) {
		s := activeShipper("sh-1")
		s.IsOnline = false
		assert.False(t, s.Eligible(LegPickup))
	})

	t.Run("busy", func(t *testing.T) {
		s := activeShipper("sh-1")
		s.IsAvailable = false
		assert.False(t, s.Eligible(LegDelivery))
	})

	t.Run("daily cap counts both legs", func(t *testing.T) {
		s := activeShipper("sh-1")
		s.MaxDailyOrders = 10
		s.CurrentPickupCount = 6
		s.CurrentDeliveryCount = 4
		assert.False(t, s.Eligible(LegPickup))

		s.CurrentDeliveryCount = 3
		assert.True(t, s.Eligible(LegPickup))
	})
}

func TestRankCandidates(t *testing.T) {
	t.Run("fewest assignments first", func(t *testing.T) {
		busy := activeShipper("sh-busy")
		busy.CurrentDeliveryCount = 5
		idle := activeShipper("sh-idle")

		ranked := RankCandidates([]*Shipper{busy, idle}, LegDelivery)
		require.Len(t, ranked, 2)
		assert.Equal(t, "sh-idle", ranked[0].ID)
	})

	t.Run("rating breaks counter ties", func(t *testing.T) {
		low := activeShipper("sh-low")
		low.AvgRating = 3.9
		high := activeShipper("sh-high")
		high.AvgRating = 4.9

		ranked := RankCandidates([]*Shipper{low, high}, LegPickup)
		assert.Equal(t, "sh-high", ranked[0].ID)
	})

	t.Run("heartbeat breaks rating ties", func(t *testing.T) {
		stale := activeShipper("sh-stale")
		fresh := activeShipper("sh-fresh")
		fresh.LastSeenAt = stale.LastSeenAt.Add(time.Minute)

		ranked := RankCandidates([]*Shipper{stale, fresh}, LegPickup)
		assert.Equal(t, "sh-fresh", ranked[0].ID)
	})

	t.Run("id is the final deterministic tiebreak", func(t *testing.T) {
		b := activeShipper("sh-b")
		a := activeShipper("sh-a")

		ranked := RankCandidates([]*Shipper{b, a}, LegPickup)
		assert.Equal(t, "sh-a", ranked[0].ID)
	})

	t.Run("ineligible shippers are filtered", func(t *testing.T) {
		off := activeShipper("sh-off")
		off.IsOnline = false

		ranked := RankCandidates([]*Shipper{off, activeShipper("sh-on")}, LegPickup)
		require.Len(t, ranked, 1)
		assert.Equal(t, "sh-on", ranked[0].ID)
	})

	t.Run("pickup leg ranks by pickup counter only", func(t *testing.T) {
		deliverer := activeShipper("sh-deliver")
		deliverer.CurrentDeliveryCount = 8
		picker := activeShipper("sh-pick")
		picker.CurrentPickupCount = 1

		ranked := RankCandidates([]*Shipper{picker, deliverer}, LegPickup)
		assert.Equal(t, "sh-deliver", ranked[0].ID)
	})
}

func TestPlanLegs(t *testing.T) {
	pickupOffice := &PostOffice{ID: "po-hn-1", Region: shared.RegionNorth, ParentID: "hub-north"}

	t.Run("same region is two courier legs", func(t *testing.T) {
		deliveryOffice := &PostOffice{ID: "po-hn-2", Region: shared.RegionNorth, ParentID: "hub-north"}
		legs := PlanLegs(pickupOffice, deliveryOffice)
		require.Len(t, legs, 2)

		assert.Equal(t, LegPickup, legs[0].Kind)
		assert.True(t, legs[0].NeedsShipper)
		assert.Equal(t, "po-hn-1", legs[0].OfficeID)

		assert.Equal(t, LegDelivery, legs[1].Kind)
		assert.True(t, legs[1].NeedsShipper)
		assert.Equal(t, "po-hn-2", legs[1].OfficeID)
	})

	t.Run("cross region routes through hubs", func(t *testing.T) {
		deliveryOffice := &PostOffice{ID: "po-sg-1", Region: shared.RegionSouth, ParentID: "hub-south"}
		legs := PlanLegs(pickupOffice, deliveryOffice)
		require.Len(t, legs, 5)

		var courierLegs int
		for _, l := range legs {
			if l.NeedsShipper {
				courierLegs++
			}
		}
		assert.Equal(t, 2, courierLegs, "only first and last mile need couriers")

		assert.Equal(t, "hub-north", legs[1].ToOfficeID)
		assert.Equal(t, "hub-north", legs[2].FromOfficeID)
		assert.Equal(t, "hub-south", legs[2].ToOfficeID)
		assert.Equal(t, "po-sg-1", legs[3].ToOfficeID)
		assert.Equal(t, "po-sg-1", legs[4].OfficeID)
	})
}

func TestCrossRegion(t *testing.T) {
	assert.False(t, CrossRegion(shared.RegionNorth, shared.RegionNorth))
	assert.True(t, CrossRegion(shared.RegionNorth, shared.RegionSouth))
}

func TestNearestLocal(t *testing.T) {
	hanoi := &PostOffice{ID: "po-hn", Type: OfficeLocal, Region: shared.RegionNorth, Lat: 21.03, Lng: 105.85}
	haiphong := &PostOffice{ID: "po-hp", Type: OfficeLocal, Region: shared.RegionNorth, Lat: 20.86, Lng: 106.68}
	saigon := &PostOffice{ID: "po-sg", Type: OfficeLocal, Region: shared.RegionSouth, Lat: 10.78, Lng: 106.70}
	hub := &PostOffice{ID: "hub-n", Type: OfficeRegional, Region: shared.RegionNorth, Lat: 21.0, Lng: 105.8}
	offices := []*PostOffice{hanoi, haiphong, saigon, hub}

	t.Run("closest local office in region", func(t *testing.T) {
		got := NearestLocal(offices, shared.RegionNorth, 21.02, 105.84)
		require.NotNil(t, got)
		assert.Equal(t, "po-hn", got.ID)
	})

	t.Run("regional hubs never match", func(t *testing.T) {
		got := NearestLocal([]*PostOffice{hub}, shared.RegionNorth, 21.0, 105.8)
		assert.Nil(t, got)
	})

	t.Run("same region preferred over closer out-of-region", func(t *testing.T) {
		// a point in the south with only one southern office far away
		got := NearestLocal(offices, shared.RegionSouth, 10.0, 106.0)
		require.NotNil(t, got)
		assert.Equal(t, "po-sg", got.ID)
	})

	t.Run("no offices", func(t *testing.T) {
		assert.Nil(t, NearestLocal(nil, shared.RegionNorth, 0, 0))
	})
}

func TestDistanceKm(t *testing.T) {
	hanoi := &PostOffice{Lat: 21.0278, Lng: 105.8342}
	// Hanoi to Saigon is roughly 1160 km
	d := hanoi.DistanceKm(10.7769, 106.7009)
	assert.InDelta(t, 1160, d, 30)

	assert.InDelta(t, 0, hanoi.DistanceKm(21.0278, 105.8342), 0.001)
}
