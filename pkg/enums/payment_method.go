package enums

import "fmt"

// PaymentMethod identifies how the buyer paid for an order.
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodWallet    PaymentMethod = "wallet"
	PaymentMethodBank      PaymentMethod = "bank"
	PaymentMethodJazzCash  PaymentMethod = "jazzcash"
	PaymentMethodEasypaisa PaymentMethod = "easypaisa"
	PaymentMethodOther     PaymentMethod = "other"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodWallet,
	PaymentMethodBank,
	PaymentMethodJazzCash,
	PaymentMethodEasypaisa,
	PaymentMethodOther,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresPaymentResult reports whether checkout must carry a gateway
// result for this method. Cash settles offline and wallet is charged by
// the backend itself, so neither needs one.
func (p PaymentMethod) RequiresPaymentResult() bool {
	return p != PaymentMethodCash && p != PaymentMethodWallet
}

// RequiresTransactionID reports whether the gateway result must carry a
// transaction id for this method.
func (p PaymentMethod) RequiresTransactionID() bool {
	return p == PaymentMethodJazzCash || p == PaymentMethodEasypaisa
}

// AcceptsPaymentProof reports whether a proof-of-payment upload is
// meaningful for this method.
func (p PaymentMethod) AcceptsPaymentProof() bool {
	return p == PaymentMethodBank || p == PaymentMethodJazzCash || p == PaymentMethodEasypaisa
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
