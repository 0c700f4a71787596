package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order. The progression
// is strictly forward: pending, processing, delivered.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered
}

// Next returns the subsequent status in the lifecycle. ok is false when the
// status is terminal or unknown.
func (o OrderStatus) Next() (OrderStatus, bool) {
	switch o {
	case OrderStatusPending:
		return OrderStatusProcessing, true
	case OrderStatusProcessing:
		return OrderStatusDelivered, true
	default:
		return "", false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
