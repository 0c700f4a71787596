package enums

import "fmt"

// PaymentStatus tracks how much of an order's total has been collected.
// The advance collected at placement moves pending to partial_paid; settling
// the remainder moves partial_paid to fully_paid. No backward transitions.
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPartialPaid PaymentStatus = "partial_paid"
	PaymentStatusFullyPaid   PaymentStatus = "fully_paid"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPartialPaid,
	PaymentStatusFullyPaid,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
