package enums

import "fmt"

// OrderStatus is the customer-facing order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusPacked           OrderStatus = "packed"
	OrderStatusPaymentProcessed OrderStatus = "payment_processed"
	OrderStatusReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusPaymentPending   OrderStatus = "payment_pending"
	OrderStatusPaymentRejected  OrderStatus = "payment_rejected"
	OrderStatusRefundRequested  OrderStatus = "refund_requested"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusPaymentProcessed,
	OrderStatusReadyForDelivery,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusPaymentPending,
	OrderStatusPaymentRejected,
	OrderStatusRefundRequested,
	OrderStatusCancelled,
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

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
