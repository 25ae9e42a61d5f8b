package enums

import "fmt"

// FulfillmentStage is the vendor-side progress marker, distinct from the
// customer-facing order status. The zero value means fulfillment has not
// started yet.
type FulfillmentStage string

const (
	FulfillmentStageNone                  FulfillmentStage = ""
	FulfillmentStageAvailabilityConfirmed FulfillmentStage = "availability_confirmed"
	FulfillmentStagePacked                FulfillmentStage = "packed"
	FulfillmentStagePaymentProcessed      FulfillmentStage = "payment_processed"
	FulfillmentStageAdminPaid             FulfillmentStage = "admin_paid"
	FulfillmentStageHandedOver            FulfillmentStage = "handed_over"
)

var validFulfillmentStages = []FulfillmentStage{
	FulfillmentStageAvailabilityConfirmed,
	FulfillmentStagePacked,
	FulfillmentStagePaymentProcessed,
	FulfillmentStageAdminPaid,
	FulfillmentStageHandedOver,
}

// String implements fmt.Stringer.
func (f FulfillmentStage) String() string {
	return string(f)
}

// IsValid reports whether the value is one of the five defined stages.
func (f FulfillmentStage) IsValid() bool {
	for _, candidate := range validFulfillmentStages {
		if candidate == f {
			return true
		}
	}
	return false
}

// Started reports whether fulfillment has begun for the order.
func (f FulfillmentStage) Started() bool {
	return f != FulfillmentStageNone
}

// ParseFulfillmentStage converts raw input into a FulfillmentStage.
func ParseFulfillmentStage(value string) (FulfillmentStage, error) {
	for _, candidate := range validFulfillmentStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment stage %q", value)
}
