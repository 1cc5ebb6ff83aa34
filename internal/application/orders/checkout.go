package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/tracking"
	"github.com/vietcart/logistics/pkg/utils"
)

// CheckoutItem is one cart line at checkout, already price-snapshotted.
type CheckoutItem struct {
	ShopID    string
	ProductID string
	VariantID string
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Quantity  int
	Image     string
}

// CheckoutRequest creates one order fanned out into one sub-order per
// shop. ShippingFees is keyed by shop id; a missing key means free
// shipping for that shop.
type CheckoutRequest struct {
	PaymentMethod order.PaymentMethod
	ShippingName  string
	ShippingPhone string
	ShippingAddr  shared.Address
	Items         []CheckoutItem
	ShippingFees  map[string]decimal.Decimal
	DiscountTotal decimal.Decimal
}

// PlaceOrder runs checkout: group the cart by shop, snapshot items into
// sub-orders, validate the money columns, and persist the aggregate.
// Online-paid orders start in pending_payment and wait for the payments
// queue; COD orders start confirmed since there is no payment to wait
// for. Either way the customer cancel window stays open until a shop
// starts fulfillment.
func (s *Service) PlaceOrder(ctx context.Context, actor shared.Actor, req CheckoutRequest) (*order.Order, error) {
	if actor.Role != shared.RoleCustomer {
		return nil, shared.ErrForbidden("place an order")
	}
	if len(req.Items) == 0 {
		return nil, shared.ErrValidation("items", "cart is empty")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, shared.ErrValidation("quantity", "must be positive")
		}
		if it.UnitPrice.IsNegative() {
			return nil, shared.ErrValidation("unitPrice", "must be non-negative")
		}
	}

	now := s.clock.Now()
	o := &order.Order{
		ID:            uuid.New().String(),
		UserID:        actor.UserID,
		OrderNumber:   utils.GenerateOrderNumber(now),
		DiscountTotal: req.DiscountTotal,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: order.PaymentPending,
		Status:        order.StatusPendingPayment,
		ShippingName:  req.ShippingName,
		ShippingPhone: req.ShippingPhone,
		ShippingAddr:  req.ShippingAddr,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, shopID := range shopOrder(req.Items) {
		so := &order.SubOrder{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ShopID:      shopID,
			ShippingFee: req.ShippingFees[shopID],
			Status:      order.SubPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, it := range req.Items {
			if it.ShopID != shopID {
				continue
			}
			line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			so.Items = append(so.Items, &order.Item{
				ID:         uuid.New().String(),
				SubOrderID: so.ID,
				ProductID:  it.ProductID,
				VariantID:  it.VariantID,
				Name:       it.Name,
				SKU:        it.SKU,
				UnitPrice:  it.UnitPrice,
				Quantity:   it.Quantity,
				TotalPrice: line,
				Image:      it.Image,
			})
			so.Subtotal = so.Subtotal.Add(line)
		}
		so.Total = so.Subtotal.Add(so.ShippingFee)
		o.Subtotal = o.Subtotal.Add(so.Subtotal)
		o.ShippingTotal = o.ShippingTotal.Add(so.ShippingFee)
		o.SubOrders = append(o.SubOrders, so)
	}
	o.GrandTotal = o.Subtotal.Add(o.ShippingTotal).Sub(o.DiscountTotal)

	if req.PaymentMethod == order.PayCOD {
		o.Status = order.StatusConfirmed
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	for _, so := range o.SubOrders {
		s.appendEvent(ctx, so.ID, "", tracking.EventOrderCreated, "order placed", actor)
	}
	s.publishStatus(ctx, o, "", "", string(o.Status), actor)

	s.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", o.UserID),
		zap.Int("sub_orders", len(o.SubOrders)),
		zap.String("payment_method", string(o.PaymentMethod)))
	return o, nil
}

// shopOrder returns the distinct shop ids in first-seen order so sub-order
// creation is deterministic.
func shopOrder(items []CheckoutItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ShopID]; ok {
			continue
		}
		seen[it.ShopID] = struct{}{}
		out = append(out, it.ShopID)
	}
	return out
}
