package eventbus

import (
	"context"

	"github.com/shopspring/decimal"
)

// InventoryBridge forwards stock releases to the inventory service over
// the orders queue. Inventory lives outside this service; the queue is
// the only contract between them.
type InventoryBridge struct {
	publisher Publisher
}

// NewInventoryBridge wraps a publisher
func NewInventoryBridge(publisher Publisher) *InventoryBridge {
	return &InventoryBridge{publisher: publisher}
}

// ReleaseStock asks inventory to return the order's reserved units.
func (b *InventoryBridge) ReleaseStock(ctx context.Context, orderID string) error {
	return b.publisher.Publish(ctx, QueueOrders, EventStockReleaseRequested, orderID,
		StockReleasePayload{OrderID: orderID})
}

// PaymentBridge forwards refund requests to the payment service over the
// payments queue. Settlement comes back asynchronously; publishing only
// guarantees the request was handed off.
type PaymentBridge struct {
	publisher Publisher
}

// NewPaymentBridge wraps a publisher
func NewPaymentBridge(publisher Publisher) *PaymentBridge {
	return &PaymentBridge{publisher: publisher}
}

// Refund asks the payment channel to return the captured amount.
func (b *PaymentBridge) Refund(ctx context.Context, orderID string, amount decimal.Decimal) error {
	return b.publisher.Publish(ctx, QueuePayments, EventRefundRequested, orderID,
		RefundPayload{OrderID: orderID, Amount: amount})
}
