package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder(subStatuses ...SubStatus) *Order {
	o := &Order{
		ID:            "ord-1",
		UserID:        "user-1",
		OrderNumber:   "VC20260801000001",
		Subtotal:      d("100000"),
		ShippingTotal: d("20000"),
		DiscountTotal: d("0"),
		GrandTotal:    d("120000"),
		PaymentMethod: PayMomo,
		PaymentStatus: PaymentPending,
		Status:        StatusPendingPayment,
	}
	for i, st := range subStatuses {
		o.SubOrders = append(o.SubOrders, &SubOrder{
			ID:      "sub-" + string(rune('a'+i)),
			OrderID: o.ID,
			ShopID:  "shop-" + string(rune('a'+i)),
			Status:  st,
		})
	}
	return o
}

func TestOrderValidate(t *testing.T) {
	t.Run("valid order passes", func(t *testing.T) {
		assert.NoError(t, testOrder(SubPending).Validate())
	})

	t.Run("grand total must balance", func(t *testing.T) {
		o := testOrder(SubPending)
		o.GrandTotal = d("999999")
		err := o.Validate()
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("negative amounts rejected", func(t *testing.T) {
		o := testOrder(SubPending)
		o.DiscountTotal = d("-1")
		assert.Error(t, o.Validate())
	})

	t.Run("order needs sub-orders", func(t *testing.T) {
		assert.Error(t, testOrder().Validate())
	})
}

func TestOrderOwnedBy(t *testing.T) {
	o := testOrder(SubPending)

	assert.True(t, o.OwnedBy(shared.Actor{UserID: "user-1", Role: shared.RoleCustomer}))
	assert.False(t, o.OwnedBy(shared.Actor{UserID: "user-2", Role: shared.RoleCustomer}))
	assert.False(t, o.OwnedBy(shared.Actor{UserID: "user-1", Role: shared.RolePartner}))
	assert.True(t, o.OwnedBy(shared.Actor{UserID: "ops", Role: shared.RoleAdmin}))
	assert.True(t, o.OwnedBy(shared.SystemActor()))
}

func TestOrderMarkPaid(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending payment becomes confirmed", func(t *testing.T) {
		o := testOrder(SubPending, SubPending)
		require.NoError(t, o.MarkPaid(now))

		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
		require.NotNil(t, o.PaidAt)
		assert.Equal(t, now, *o.PaidAt)
		for _, so := range o.SubOrders {
			assert.Equal(t, SubPending, so.Status)
		}
	})

	t.Run("cancelled order is not payable", func(t *testing.T) {
		o := testOrder(SubPending)
		o.Status = StatusCancelled
		err := o.MarkPaid(now)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindInvalidStatusTransition))
	})
}

func TestOrderStartFulfillment(t *testing.T) {
	now := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)

	t.Run("confirmed moves to processing", func(t *testing.T) {
		o := testOrder(SubPending)
		o.Status = StatusConfirmed
		o.StartFulfillment(now)
		assert.Equal(t, StatusProcessing, o.Status)
	})

	t.Run("anything else stays put", func(t *testing.T) {
		o := testOrder(SubPending)
		o.StartFulfillment(now)
		assert.Equal(t, StatusPendingPayment, o.Status)

		o.Status = StatusCancelled
		o.StartFulfillment(now)
		assert.Equal(t, StatusCancelled, o.Status)
	})
}

func TestOrderMarkPaymentFailed(t *testing.T) {
	now := time.Now()

	o := testOrder(SubPending)
	require.NoError(t, o.MarkPaymentFailed(now))
	assert.Equal(t, StatusPaymentFailed, o.Status)
	assert.Equal(t, PaymentFailed, o.PaymentStatus)

	assert.Error(t, o.MarkPaymentFailed(now))
}

func TestOrderCanCustomerCancel(t *testing.T) {
	t.Run("open while pending payment", func(t *testing.T) {
		assert.True(t, testOrder(SubPending).CanCustomerCancel())
	})

	t.Run("open while confirmed", func(t *testing.T) {
		o := testOrder(SubPending, SubConfirmed)
		o.Status = StatusConfirmed
		assert.True(t, o.CanCustomerCancel())
	})

	t.Run("closed once processing", func(t *testing.T) {
		o := testOrder(SubPending)
		o.Status = StatusProcessing
		assert.False(t, o.CanCustomerCancel())
	})

	t.Run("closed once a slice is packed", func(t *testing.T) {
		o := testOrder(SubPending, SubReadyToShip)
		o.Status = StatusConfirmed
		assert.False(t, o.CanCustomerCancel())
	})

	t.Run("closed when any sub-order is shipping", func(t *testing.T) {
		o := testOrder(SubPending, SubShipping)
		o.Status = StatusConfirmed
		assert.False(t, o.CanCustomerCancel())
	})

	t.Run("stays closed after delivery", func(t *testing.T) {
		o := testOrder(SubDelivered)
		o.Status = StatusConfirmed
		assert.False(t, o.CanCustomerCancel())
	})

	t.Run("already-cancelled slices do not block", func(t *testing.T) {
		o := testOrder(SubCancelled, SubPending)
		o.Status = StatusConfirmed
		assert.True(t, o.CanCustomerCancel())
	})
}

func TestOrderCancel(t *testing.T) {
	now := time.Now()
	o := testOrder(SubPending, SubConfirmed, SubShipping)
	o.Cancel(now)

	assert.Equal(t, StatusCancelled, o.Status)
	require.NotNil(t, o.CancelledAt)
	assert.Equal(t, SubCancelled, o.SubOrders[0].Status)
	assert.Equal(t, SubCancelled, o.SubOrders[1].Status)
	// shipping sub-orders are past the cancellation point
	assert.Equal(t, SubShipping, o.SubOrders[2].Status)
}

func TestOrderReadyToComplete(t *testing.T) {
	tests := []struct {
		name  string
		subs  []SubStatus
		ready bool
	}{
		{"all completed", []SubStatus{SubCompleted, SubCompleted}, true},
		{"delivered awaits receipt confirmation", []SubStatus{SubDelivered, SubCompleted}, false},
		{"one still shipping", []SubStatus{SubCompleted, SubShipping}, false},
		{"mixed with cancelled", []SubStatus{SubCompleted, SubCancelled}, true},
		{"refunded return counts", []SubStatus{SubRefunded, SubCompleted}, true},
		{"all cancelled never completes", []SubStatus{SubCancelled, SubCancelled}, false},
		{"return in flight blocks", []SubStatus{SubCompleted, SubReturnRequested}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ready, testOrder(tt.subs...).ReadyToComplete())
		})
	}
}

func TestSubOrderTransition(t *testing.T) {
	now := time.Now()
	so := &SubOrder{ID: "sub-1", Status: SubPending}

	require.NoError(t, so.Transition(SubConfirmed, now))
	assert.Equal(t, SubConfirmed, so.Status)
	assert.Equal(t, now, so.UpdatedAt)

	err := so.Transition(SubDelivered, now)
	require.Error(t, err)
	assert.Equal(t, SubConfirmed, so.Status)
}

func TestSubOrderMarkDelivered(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	so := &SubOrder{ID: "sub-1", Status: SubShipping}

	require.NoError(t, so.MarkDelivered(now))
	assert.Equal(t, SubDelivered, so.Status)
	require.NotNil(t, so.DeliveredAt)
	require.NotNil(t, so.ReturnDeadline)
	assert.Equal(t, now.Add(ReturnWindow), *so.ReturnDeadline)
}

func TestSubOrderRequestReturn(t *testing.T) {
	delivered := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	t.Run("inside the window", func(t *testing.T) {
		so := &SubOrder{ID: "sub-1", Status: SubShipping}
		require.NoError(t, so.MarkDelivered(delivered))
		require.NoError(t, so.RequestReturn(delivered.Add(6*24*time.Hour)))
		assert.Equal(t, SubReturnRequested, so.Status)
	})

	t.Run("window closed", func(t *testing.T) {
		so := &SubOrder{ID: "sub-1", Status: SubShipping}
		require.NoError(t, so.MarkDelivered(delivered))
		err := so.RequestReturn(delivered.Add(8 * 24 * time.Hour))
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
		assert.Equal(t, SubDelivered, so.Status)
	})
}

func TestSubOrderOwnedByShop(t *testing.T) {
	so := &SubOrder{ID: "sub-1", ShopID: "shop-1"}

	assert.True(t, so.OwnedByShop(shared.Actor{Role: shared.RolePartner, ShopID: "shop-1"}))
	assert.False(t, so.OwnedByShop(shared.Actor{Role: shared.RolePartner, ShopID: "shop-2"}))
	assert.False(t, so.OwnedByShop(shared.Actor{Role: shared.RoleCustomer, ShopID: "shop-1"}))
	assert.True(t, so.OwnedByShop(shared.Actor{Role: shared.RoleAdmin}))
}

func TestCoinReward(t *testing.T) {
	tests := []struct {
		name  string
		total string
		coins int64
	}{
		{"one percent floor", "25550", 255},
		{"floor drops fraction", "12345", 123},
		{"minimum clamp", "500", 10},
		{"zero total still grants minimum", "0", 10},
		{"maximum clamp", "100000", 500},
		{"exactly at cap", "50000", 500},
		{"just under cap", "49999", 499},
		{"just over minimum boundary", "1000", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.coins, CoinReward(d(tt.total)))
		})
	}
}
