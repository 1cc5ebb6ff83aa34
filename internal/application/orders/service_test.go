package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appdispatch "github.com/vietcart/logistics/internal/application/dispatch"
	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/adapters/persistence"
	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/test/helpers"
)

type fakeGateway struct {
	created   []shipping.CreateRequest
	cancelled []string
	code      string
	createErr error
}

func (g *fakeGateway) CreateShipment(_ context.Context, shopID, providerCode string, req shipping.CreateRequest) (*shipping.Shipment, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	code := g.code
	if code == "" {
		code = providerCode
	}
	return &shipping.Shipment{
		ID:           "shp-" + req.SubOrderID,
		SubOrderID:   req.SubOrderID,
		ProviderCode: code,
		CODAmount:    req.CODAmount,
		Status:       shipping.StatusCreated,
	}, nil
}

func (g *fakeGateway) CancelShipment(_ context.Context, shipmentID, _ string) error {
	g.cancelled = append(g.cancelled, shipmentID)
	return nil
}

type fakeAssigner struct {
	assigned []string
	err      error
}

func (a *fakeAssigner) AssignShipment(_ context.Context, shipmentID string) (*appdispatch.Assignment, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.assigned = append(a.assigned, shipmentID)
	return &appdispatch.Assignment{ShipmentID: shipmentID}, nil
}

type fakeInventory struct {
	released []string
}

func (i *fakeInventory) ReleaseStock(_ context.Context, orderID string) error {
	i.released = append(i.released, orderID)
	return nil
}

type fakePayments struct {
	refunds map[string]decimal.Decimal
	err     error
}

func (p *fakePayments) Refund(_ context.Context, orderID string, amount decimal.Decimal) error {
	if p.err != nil {
		return p.err
	}
	if p.refunds == nil {
		p.refunds = make(map[string]decimal.Decimal)
	}
	p.refunds[orderID] = amount
	return nil
}

type orderFixture struct {
	svc       *Service
	orders    order.Repository
	pub       *helpers.MockPublisher
	gateway   *fakeGateway
	assigner  *fakeAssigner
	inventory *fakeInventory
	payments  *fakePayments
	clock     *shared.MockClock
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC))
	pub := helpers.NewMockPublisher()
	gateway := &fakeGateway{}
	assigner := &fakeAssigner{}
	inventory := &fakeInventory{}
	payments := &fakePayments{}

	orderRepo := persistence.NewOrderRepository(db)
	svc := NewService(
		orderRepo,
		persistence.NewRewardRepository(db, clock),
		persistence.NewShipmentRepository(db),
		gateway,
		assigner,
		inventory,
		payments,
		persistence.NewTrackingEventRepository(db),
		pub,
		clock,
		zap.NewNop(),
	)
	return &orderFixture{
		svc:       svc,
		orders:    orderRepo,
		pub:       pub,
		gateway:   gateway,
		assigner:  assigner,
		inventory: inventory,
		payments:  payments,
		clock:     clock,
	}
}

func customer() shared.Actor {
	return shared.Actor{UserID: "user-1", Role: shared.RoleCustomer}
}

func partnerOf(shopID string) shared.Actor {
	return shared.Actor{UserID: "staff-1", Role: shared.RolePartner, ShopID: shopID}
}

func twoShopCart() CheckoutRequest {
	return CheckoutRequest{
		PaymentMethod: order.PayMomo,
		ShippingName:  "Nguyễn Văn A",
		ShippingPhone: "0900000000",
		ShippingAddr:  shared.Address{Line: "1 Phố Huế", City: "Hà Nội", Region: shared.RegionNorth},
		Items: []CheckoutItem{
			{ShopID: "shop-1", ProductID: "p1", Name: "Áo thun", UnitPrice: decimal.NewFromInt(120000), Quantity: 2},
			{ShopID: "shop-2", ProductID: "p2", Name: "Bình nước", UnitPrice: decimal.NewFromInt(80000), Quantity: 1},
			{ShopID: "shop-1", ProductID: "p3", Name: "Tất", UnitPrice: decimal.NewFromInt(25000), Quantity: 4},
		},
		ShippingFees: map[string]decimal.Decimal{
			"shop-1": decimal.NewFromInt(25000),
			"shop-2": decimal.NewFromInt(18000),
		},
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out one sub-order per shop", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)

		require.Len(t, o.SubOrders, 2)
		assert.Equal(t, "shop-1", o.SubOrders[0].ShopID)
		assert.Equal(t, "shop-2", o.SubOrders[1].ShopID)

		// shop-1: 2×120000 + 4×25000 = 340000; shop-2: 80000
		assert.True(t, o.SubOrders[0].Subtotal.Equal(decimal.NewFromInt(340000)))
		assert.True(t, o.SubOrders[1].Subtotal.Equal(decimal.NewFromInt(80000)))
		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(420000)))
		assert.True(t, o.GrandTotal.Equal(decimal.NewFromInt(463000)))

		assert.Equal(t, order.StatusPendingPayment, o.Status)
		assert.Len(t, f.pub.ByType(eventbus.EventOrderStatusChanged), 1)

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Len(t, got.SubOrders[0].Items, 2)
	})

	t.Run("cod orders start confirmed", func(t *testing.T) {
		f := newOrderFixture(t)
		req := twoShopCart()
		req.PaymentMethod = order.PayCOD

		o, err := f.svc.PlaceOrder(ctx, customer(), req)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, o.Status, "nothing to wait for, but not yet in fulfillment")
	})

	t.Run("empty cart rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.PlaceOrder(ctx, customer(), CheckoutRequest{PaymentMethod: order.PayMomo})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		req := twoShopCart()
		req.Items[0].Quantity = 0
		_, err := f.svc.PlaceOrder(ctx, customer(), req)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("only customers place orders", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.PlaceOrder(ctx, partnerOf("shop-1"), twoShopCart())
		assert.True(t, shared.IsKind(err, shared.KindForbidden))
	})
}

func TestHandlePaymentSucceeded(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)

	require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status, "fulfillment has not started yet")
	assert.Equal(t, order.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaidAt)

	t.Run("redelivery is absorbed", func(t *testing.T) {
		before := len(f.pub.Events)
		require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))
		assert.Len(t, f.pub.Events, before, "replayed event must not publish again")
	})
}

func TestHandlePaymentSucceededOnCancelledOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelOrder(ctx, customer(), o.ID, "changed my mind"))

	// late payment success commits without resurrecting the order
	require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))
	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestHandlePaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)

	require.NoError(t, f.svc.HandlePaymentFailed(ctx, o.ID, "card declined"))
	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaymentFailed, got.Status)
	assert.Equal(t, []string{o.ID}, f.inventory.released, "reserved stock goes back on failure")

	require.NoError(t, f.svc.HandlePaymentFailed(ctx, o.ID, "card declined"))
	assert.Len(t, f.inventory.released, 1, "redelivery must not release twice")
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels inside the window", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)

		require.NoError(t, f.svc.CancelOrder(ctx, customer(), o.ID, "found it cheaper"))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status)
		for _, so := range got.SubOrders {
			assert.Equal(t, order.SubCancelled, so.Status)
		}
		assert.Equal(t, []string{o.ID}, f.inventory.released)
		assert.Empty(t, f.payments.refunds, "nothing was captured, nothing to refund")
		assert.Len(t, f.pub.ByType(eventbus.EventOrderCancelled), 1)
	})

	t.Run("paid order refunds and releases stock", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)
		require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))

		require.NoError(t, f.svc.CancelOrder(ctx, customer(), o.ID, "changed my mind"))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusRefunded, got.Status)
		assert.Equal(t, order.PaymentRefunded, got.PaymentStatus)
		assert.True(t, f.payments.refunds[o.ID].Equal(o.GrandTotal))
		assert.Equal(t, []string{o.ID}, f.inventory.released)
	})

	t.Run("cod orders stay cancellable until fulfillment", func(t *testing.T) {
		f := newOrderFixture(t)
		req := twoShopCart()
		req.PaymentMethod = order.PayCOD
		o, err := f.svc.PlaceOrder(ctx, customer(), req)
		require.NoError(t, err)

		require.NoError(t, f.svc.CancelOrder(ctx, customer(), o.ID, "ordered twice"))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status)
		assert.Empty(t, f.payments.refunds, "cod captured nothing")
	})

	t.Run("refund failure keeps the cancellation", func(t *testing.T) {
		f := newOrderFixture(t)
		f.payments.err = errors.New("gateway unreachable")
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)
		require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))

		require.NoError(t, f.svc.CancelOrder(ctx, customer(), o.ID, "changed my mind"))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status, "stays cancelled-but-paid for ops retry")
		assert.Equal(t, order.PaymentPaid, got.PaymentStatus)
	})

	t.Run("window closed once a shop starts work", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)
		require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))

		p := partnerOf("shop-1")
		require.NoError(t, f.svc.ConfirmSubOrder(ctx, p, o.SubOrders[0].ID))
		require.NoError(t, f.svc.StartProcessing(ctx, p, o.SubOrders[0].ID))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, got.Status)

		err = f.svc.CancelOrder(ctx, customer(), o.ID, "too late")
		assert.True(t, shared.IsKind(err, shared.KindInvalidStatusTransition))
	})

	t.Run("other customers may not cancel", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)

		err = f.svc.CancelOrder(ctx, shared.Actor{UserID: "user-2", Role: shared.RoleCustomer}, o.ID, "")
		assert.True(t, shared.IsKind(err, shared.KindForbidden))
	})
}

// deliverAll drives a freshly paid order through the partner flow to
// delivered so the receipt and return paths can run.
func deliverAll(t *testing.T, f *orderFixture, o *order.Order) {
	t.Helper()
	ctx := context.Background()
	for _, so := range o.SubOrders {
		p := partnerOf(so.ShopID)
		require.NoError(t, f.svc.ConfirmSubOrder(ctx, p, so.ID))
		require.NoError(t, f.svc.StartProcessing(ctx, p, so.ID))
		_, err := f.svc.PackSubOrder(ctx, p, so.ID, PackRequest{ProviderCode: "ghtk", WeightGrams: 500})
		require.NoError(t, err)
	}

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	now := f.clock.Now()
	for _, so := range got.SubOrders {
		require.NoError(t, so.Transition(order.SubShipping, now))
		require.NoError(t, so.MarkDelivered(now))
	}
	require.NoError(t, f.orders.Save(ctx, got))
}

func placeDelivered(t *testing.T, f *orderFixture) *order.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)
	require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))
	deliverAll(t, f, o)

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	return got
}

func TestConfirmReceipt(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeDelivered(t, f)

	require.NoError(t, f.svc.ConfirmReceipt(ctx, customer(), o.SubOrders[0].ID))

	t.Run("first confirmation does not complete the aggregate", func(t *testing.T) {
		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.NotEqual(t, order.StatusCompleted, got.Status)
		assert.Empty(t, f.pub.ByType(eventbus.EventOrderCompleted))
	})

	require.NoError(t, f.svc.ConfirmReceipt(ctx, customer(), o.SubOrders[1].ID))

	t.Run("last confirmation completes and publishes once", func(t *testing.T) {
		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.Len(t, f.pub.ByType(eventbus.EventOrderCompleted), 1)
	})

	t.Run("coins granted per sub-order", func(t *testing.T) {
		balance, err := f.svc.CoinBalance(ctx, customer())
		require.NoError(t, err)
		want := order.CoinReward(o.SubOrders[0].Total) + order.CoinReward(o.SubOrders[1].Total)
		assert.Equal(t, want, balance)
	})

	t.Run("double confirmation rejected, coins stay single", func(t *testing.T) {
		err := f.svc.ConfirmReceipt(ctx, customer(), o.SubOrders[0].ID)
		assert.True(t, shared.IsKind(err, shared.KindInvalidStatusTransition))

		balance, err := f.svc.CoinBalance(ctx, customer())
		require.NoError(t, err)
		want := order.CoinReward(o.SubOrders[0].Total) + order.CoinReward(o.SubOrders[1].Total)
		assert.Equal(t, want, balance)
	})
}

func TestRequestReturn(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeDelivered(t, f)
	subID := o.SubOrders[0].ID

	t.Run("inside the window", func(t *testing.T) {
		require.NoError(t, f.svc.RequestReturn(ctx, customer(), subID, "wrong size"))
		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.SubReturnRequested, got.SubOrder(subID).Status)
	})

	t.Run("window expired", func(t *testing.T) {
		f := newOrderFixture(t)
		o := placeDelivered(t, f)
		f.clock.Advance(8 * 24 * time.Hour)

		err := f.svc.RequestReturn(ctx, customer(), o.SubOrders[0].ID, "too slow")
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestReturnFlow(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeDelivered(t, f)
	subID := o.SubOrders[0].ID
	p := partnerOf(o.SubOrders[0].ShopID)

	require.NoError(t, f.svc.RequestReturn(ctx, customer(), subID, "wrong size"))
	require.NoError(t, f.svc.ApproveReturn(ctx, p, subID))
	require.NoError(t, f.svc.MarkReturned(ctx, p, subID))
	require.NoError(t, f.svc.RefundReturned(ctx, p, subID))

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.SubRefunded, got.SubOrder(subID).Status)

	t.Run("foreign shop rejected", func(t *testing.T) {
		otherSub := o.SubOrders[1].ID
		err := f.svc.ApproveReturn(ctx, partnerOf("shop-elsewhere"), otherSub)
		assert.True(t, shared.IsKind(err, shared.KindForbidden))
	})
}

func TestRejectReturnGrantsCoins(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeDelivered(t, f)
	subID := o.SubOrders[0].ID
	p := partnerOf(o.SubOrders[0].ShopID)

	require.NoError(t, f.svc.RequestReturn(ctx, customer(), subID, "wrong size"))
	require.NoError(t, f.svc.RejectReturn(ctx, p, subID, "used item"))

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.SubCompleted, got.SubOrder(subID).Status)

	balance, err := f.svc.CoinBalance(ctx, customer())
	require.NoError(t, err)
	assert.Equal(t, order.CoinReward(o.SubOrders[0].Total), balance)
}

func TestPackSubOrder(t *testing.T) {
	ctx := context.Background()

	prepare := func(t *testing.T, f *orderFixture, method order.PaymentMethod) *order.Order {
		t.Helper()
		req := twoShopCart()
		req.PaymentMethod = method
		o, err := f.svc.PlaceOrder(ctx, customer(), req)
		require.NoError(t, err)
		if method != order.PayCOD {
			require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))
		}
		p := partnerOf("shop-1")
		require.NoError(t, f.svc.ConfirmSubOrder(ctx, p, o.SubOrders[0].ID))
		require.NoError(t, f.svc.StartProcessing(ctx, p, o.SubOrders[0].ID))
		return o
	}

	t.Run("cod orders carry the sub-order total", func(t *testing.T) {
		f := newOrderFixture(t)
		o := prepare(t, f, order.PayCOD)

		sh, err := f.svc.PackSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, PackRequest{
			ProviderCode: "ghtk",
			WeightGrams:  800,
		})
		require.NoError(t, err)
		require.Len(t, f.gateway.created, 1)
		assert.True(t, f.gateway.created[0].CODAmount.Equal(o.SubOrders[0].Total))
		assert.Equal(t, "shop-1", f.gateway.created[0].ShopID)
		assert.NotNil(t, sh)
	})

	t.Run("prepaid orders ship without cod", func(t *testing.T) {
		f := newOrderFixture(t)
		o := prepare(t, f, order.PayMomo)

		_, err := f.svc.PackSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, PackRequest{
			ProviderCode: "ghtk",
			WeightGrams:  800,
		})
		require.NoError(t, err)
		assert.True(t, f.gateway.created[0].CODAmount.IsZero())
	})

	t.Run("in-house shipments are dispatched", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.code = provider.CodeInHouse
		o := prepare(t, f, order.PayCOD)

		sh, err := f.svc.PackSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, PackRequest{
			ProviderCode: provider.CodeInHouse,
			WeightGrams:  500,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{sh.ID}, f.assigner.assigned)
	})

	t.Run("dispatch failure does not fail the pack", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.code = provider.CodeInHouse
		f.assigner.err = errors.New("no shipper available")
		o := prepare(t, f, order.PayCOD)

		_, err := f.svc.PackSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, PackRequest{
			ProviderCode: provider.CodeInHouse,
			WeightGrams:  500,
		})
		require.NoError(t, err)

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.SubReadyToShip, got.SubOrder(o.SubOrders[0].ID).Status)
	})

	t.Run("pack before processing rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
		require.NoError(t, err)

		_, err = f.svc.PackSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, PackRequest{ProviderCode: "ghtk"})
		assert.True(t, shared.IsKind(err, shared.KindInvalidStatusTransition))
	})
}

func TestCancelSubOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)
	require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, o.ID))

	require.NoError(t, f.svc.CancelSubOrder(ctx, partnerOf("shop-1"), o.SubOrders[0].ID, "out of stock"))

	got, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.SubCancelled, got.SubOrder(o.SubOrders[0].ID).Status)
	assert.NotEqual(t, order.StatusCancelled, got.Status, "one live slice keeps the aggregate alive")

	t.Run("last slice cancels the aggregate and settles", func(t *testing.T) {
		require.NoError(t, f.svc.CancelSubOrder(ctx, partnerOf("shop-2"), o.SubOrders[1].ID, "warehouse flooded"))

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusRefunded, got.Status, "the order was paid online")
		assert.True(t, f.payments.refunds[o.ID].Equal(o.GrandTotal))
		assert.Equal(t, []string{o.ID}, f.inventory.released)
		assert.Len(t, f.pub.ByType(eventbus.EventOrderCancelled), 1)
	})
}

func TestListShopOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	_, err := f.svc.PlaceOrder(ctx, customer(), twoShopCart())
	require.NoError(t, err)

	got, total, err := f.svc.ListShopOrders(ctx, partnerOf("shop-1"), "shop-1", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, got, 1)

	_, _, err = f.svc.ListShopOrders(ctx, partnerOf("shop-1"), "shop-2", 0, 20)
	assert.True(t, shared.IsKind(err, shared.KindForbidden))
}
