package eventbus

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Queue names. One durable queue per concern; notifications receives a
// fan-out copy of everything the other queues carry.
const (
	QueueOrders        = "orders"
	QueuePayments      = "payments"
	QueueShipments     = "shipments"
	QueueNotifications = "notifications"
)

// Event types carried on the queues.
const (
	EventOrderStatusChanged    = "order.status_changed"
	EventOrderCancelled        = "order.cancelled"
	EventOrderCompleted        = "order.completed"
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentFailed         = "payment.failed"
	EventShipmentAssigned      = "shipment.assigned"
	EventShipmentUnassigned    = "shipment.unassigned"
	EventShipmentStatusChanged = "shipment.status_changed"
	EventStockReleaseRequested = "inventory.release_requested"
	EventRefundRequested       = "payment.refund_requested"
)

// schemaVersion tags every envelope; consumers reject versions they do not
// understand instead of misreading them.
const schemaVersion = "v1"

// Envelope is the JSON message format on every queue.
type Envelope struct {
	Schema  string          `json:"schema"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// OrderStatusPayload describes an order-level transition.
type OrderStatusPayload struct {
	OrderID    string `json:"order_id"`
	SubOrderID string `json:"sub_order_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to"`
	Actor      string `json:"actor,omitempty"`
}

// OrderCompletedPayload announces aggregate completion.
type OrderCompletedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// PaymentPayload is consumed from the payments queue.
type PaymentPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// StockReleasePayload asks the inventory service to return an order's
// reserved stock.
type StockReleasePayload struct {
	OrderID string `json:"order_id"`
}

// RefundPayload asks the payment service to refund a captured order.
type RefundPayload struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// ShipmentPayload describes shipment lifecycle events.
type ShipmentPayload struct {
	ShipmentID     string `json:"shipment_id"`
	SubOrderID     string `json:"sub_order_id"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	ProviderCode   string `json:"provider_code,omitempty"`
	ShipperID      string `json:"shipper_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
}
