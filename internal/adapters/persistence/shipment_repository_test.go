package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

func sampleShipment(id string) *shipping.Shipment {
	now := time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC)
	return &shipping.Shipment{
		ID:              id,
		SubOrderID:      "sub-" + id,
		TrackingNumber:  "TN-" + id,
		ProviderCode:    "ghtk",
		ProviderOrderID: "ext-" + id,
		Status:          shipping.StatusCreated,
		PickupAddr:      shared.Address{Line: "1 Phố Huế", District: "Hai Bà Trưng", City: "Hà Nội", Region: shared.RegionNorth},
		PickupContact:   shared.Contact{Name: "Shop A", Phone: "0900000001"},
		DeliveryAddr:    shared.Address{Line: "2 Lê Lợi", District: "Quận 1", City: "Hồ Chí Minh", Region: shared.RegionSouth},
		DeliveryContact: shared.Contact{Name: "Khách B", Phone: "0900000002"},
		Package:         shipping.Package{WeightGrams: 500, Value: decimal.NewFromInt(200000)},
		CODAmount:       decimal.NewFromInt(200000),
		CreatedAt:       now,
		UpdatedAt:       now,
		History: []shipping.HistoryEntry{
			{Status: shipping.StatusCreated, At: now, Message: "shipment registered with ghtk"},
		},
	}
}

func TestShipmentRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewShipmentRepository(db)

	s := sampleShipment("1")
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, s.TrackingNumber, got.TrackingNumber)
	assert.Equal(t, s.PickupAddr, got.PickupAddr)
	assert.Equal(t, s.DeliveryContact, got.DeliveryContact)
	assert.True(t, s.CODAmount.Equal(got.CODAmount))
	require.Len(t, got.History, 1)
	assert.Equal(t, shipping.StatusCreated, got.History[0].Status)

	t.Run("lookup by tracking number", func(t *testing.T) {
		got, err := repo.FindByTrackingNumber(ctx, "TN-1")
		require.NoError(t, err)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("lookup by provider order id", func(t *testing.T) {
		got, err := repo.FindByProviderOrderID(ctx, "ghtk", "ext-1")
		require.NoError(t, err)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("lookup by sub-order", func(t *testing.T) {
		got, err := repo.FindBySubOrderID(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("missing rows report not found", func(t *testing.T) {
		_, err := repo.FindByTrackingNumber(ctx, "nope")
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})
}

func TestShipmentSavePersistsHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewShipmentRepository(db)

	s := sampleShipment("1")
	require.NoError(t, repo.Create(ctx, s))

	moved, err := s.ApplyStatus(shipping.StatusPickedUp, "2", "picked up", time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.True(t, moved)
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, shipping.StatusPickedUp, got.Status)
	require.Len(t, got.History, 2)
	assert.Equal(t, "picked up", got.History[1].Message)
	require.NotNil(t, got.PickedUpAt)
}

func TestListUncollectedCOD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewShipmentRepository(db)

	require.NoError(t, db.Create(&SubOrderModel{
		ID: "sub-1", OrderID: "ord-1", ShopID: "shop-1", ShipperID: "sh-1",
		Subtotal: decimal.Zero, ShippingFee: decimal.Zero, Total: decimal.Zero,
		Status: "delivered", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&SubOrderModel{
		ID: "sub-2", OrderID: "ord-1", ShopID: "shop-1", ShipperID: "sh-2",
		Subtotal: decimal.Zero, ShippingFee: decimal.Zero, Total: decimal.Zero,
		Status: "delivered", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)

	due := sampleShipment("1")
	due.Status = shipping.StatusDelivered
	require.NoError(t, repo.Create(ctx, due))

	otherShipper := sampleShipment("2")
	otherShipper.Status = shipping.StatusDelivered
	require.NoError(t, repo.Create(ctx, otherShipper))

	collected := sampleShipment("3")
	collected.SubOrderID = "sub-1"
	collected.TrackingNumber = "TN-3b"
	collected.Status = shipping.StatusDelivered
	collected.CODCollected = true
	require.NoError(t, repo.Create(ctx, collected))

	got, err := repo.ListUncollectedCOD(ctx, "sh-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestListUpdatedSince(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewShipmentRepository(db)

	old := sampleShipment("1")
	old.UpdatedAt = time.Date(2026, 8, 12, 6, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, old))

	fresh := sampleShipment("2")
	fresh.UpdatedAt = time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, fresh))

	got, err := repo.ListUpdatedSince(ctx, time.Date(2026, 8, 12, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
