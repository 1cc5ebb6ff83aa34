package shipping

// UnifiedStatus is the provider-agnostic shipment state. Every raw carrier
// token normalizes into this set before touching the rest of the system.
type UnifiedStatus string

const (
	StatusCreated   UnifiedStatus = "created"
	StatusAssigned  UnifiedStatus = "assigned"
	StatusPickedUp  UnifiedStatus = "picked_up"
	StatusDelivering UnifiedStatus = "delivering"
	StatusDelivered UnifiedStatus = "delivered"
	StatusFailed    UnifiedStatus = "failed"
	StatusReturning UnifiedStatus = "returning"
	StatusReturned  UnifiedStatus = "returned"
	StatusCancelled UnifiedStatus = "cancelled"
)

// statusPriority ranks the unified set for reconciliation of racing
// updates: monotonic on the normal path, not strictly ordered across
// failure branches. A later webhook only replaces the current status when
// its priority is >= the stored one.
var statusPriority = map[UnifiedStatus]int{
	StatusCreated:    1,
	StatusAssigned:   2,
	StatusPickedUp:   3,
	StatusDelivering: 4,
	StatusDelivered:  5,
	StatusFailed:     6,
	StatusReturning:  7,
	StatusReturned:   8,
	StatusCancelled:  9,
}

// displayVI holds the fixed Vietnamese display strings.
var displayVI = map[UnifiedStatus]string{
	StatusCreated:    "Đã tạo đơn",
	StatusAssigned:   "Đã gán shipper",
	StatusPickedUp:   "Đã lấy hàng",
	StatusDelivering: "Đang giao hàng",
	StatusDelivered:  "Đã giao hàng",
	StatusFailed:     "Giao hàng thất bại",
	StatusReturning:  "Đang hoàn hàng",
	StatusReturned:   "Đã hoàn hàng",
	StatusCancelled:  "Đã hủy",
}

// Priority returns the reconciliation rank; unknown statuses rank as
// created.
func (s UnifiedStatus) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return statusPriority[StatusCreated]
}

// Display returns the fixed Vietnamese display string.
func (s UnifiedStatus) Display() string {
	return displayVI[s]
}

// IsTerminal reports whether no further transitions are permitted.
func (s UnifiedStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// IsSuccess reports successful completion. Success and failure are
// mutually exclusive.
func (s UnifiedStatus) IsSuccess() bool {
	return s == StatusDelivered
}

// IsFailure reports a failed or aborted shipment.
func (s UnifiedStatus) IsFailure() bool {
	switch s {
	case StatusFailed, StatusReturning, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// Valid reports membership in the unified set.
func (s UnifiedStatus) Valid() bool {
	_, ok := statusPriority[s]
	return ok
}
