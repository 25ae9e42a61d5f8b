package orders

import (
	"fmt"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// LineItem is one product line on an order.
type LineItem struct {
	ProductID int             `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// VendorAvailability records one vendor's answer for one product line.
// Entries are written or overwritten, never deleted.
type VendorAvailability struct {
	Available bool      `json:"available"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	VendorID  int       `json:"vendor_id"`
	ProductID int       `json:"product_id"`
}

// AvailabilityKey builds the map key for a (product, vendor) pair.
func AvailabilityKey(productID, vendorID int) string {
	return fmt.Sprintf("%d_%d", productID, vendorID)
}

// PaymentProof is an uploaded proof-of-payment image.
type PaymentProof struct {
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
	DataURL    string    `json:"data_url"`
	StoredAt   time.Time `json:"stored_at"`
	Validated  bool      `json:"validated"`
	BackupRef  string    `json:"backup_ref"`
}

// PaymentResult is what the payment gateway or client handed back at
// checkout time.
type PaymentResult struct {
	TransactionID        string          `json:"transaction_id,omitempty"`
	Provider             string          `json:"provider,omitempty"`
	Amount               decimal.Decimal `json:"amount,omitempty"`
	RequiresVerification bool            `json:"requires_verification,omitempty"`
}

// Refund is a requested refund against an order.
type Refund struct {
	ID          int64           `json:"id"`
	OrderID     int             `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
}

// DeliveryPersonnel identifies the courier assigned to an order.
type DeliveryPersonnel struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	ETA     string `json:"eta"`
	Vehicle string `json:"vehicle"`
}

// Address is the delivery destination.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Handover records the physical transfer from vendor to courier.
type Handover struct {
	Signature   string    `json:"signature,omitempty"`
	VendorID    int       `json:"vendor_id"`
	Notes       string    `json:"notes,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Order is the central entity. Total and TotalAmount are duplicated for
// legacy callers and are kept equal by the Service after every write.
type Order struct {
	ID           int        `json:"id"`
	CustomerName string     `json:"customer_name,omitempty"`
	Items        []LineItem `json:"items"`

	Total       decimal.Decimal `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	PaymentMethod      enums.PaymentMethod      `json:"payment_method"`
	PaymentStatus      enums.PaymentStatus      `json:"payment_status"`
	VerificationStatus enums.VerificationStatus `json:"verification_status,omitempty"`
	ApprovalStatus     enums.ApprovalStatus     `json:"approval_status,omitempty"`
	Status             enums.OrderStatus        `json:"status"`
	FulfillmentStage   enums.FulfillmentStage   `json:"fulfillment_stage,omitempty"`
	DeliveryStatus     enums.DeliveryStatus     `json:"delivery_status,omitempty"`

	TransactionID  string         `json:"transaction_id,omitempty"`
	PaymentResult  *PaymentResult `json:"payment_result,omitempty"`
	PaymentProof   *PaymentProof  `json:"payment_proof,omitempty"`
	PaymentRetries int            `json:"payment_retries,omitempty"`

	PaidAt                  *time.Time `json:"paid_at,omitempty"`
	PaymentProofSubmittedAt *time.Time `json:"payment_proof_submitted_at,omitempty"`

	VendorAvailability map[string]VendorAvailability `json:"vendor_availability,omitempty"`

	Refund           *Refund            `json:"refund,omitempty"`
	AssignedDelivery *DeliveryPersonnel `json:"assigned_delivery,omitempty"`
	DeliveryAddress  *Address           `json:"delivery_address,omitempty"`
	ActualDelivery   *time.Time         `json:"actual_delivery,omitempty"`
	Handover         *Handover          `json:"handover,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never hold an aliasable reference
// to store-internal state.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]LineItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.VendorAvailability != nil {
		out.VendorAvailability = make(map[string]VendorAvailability, len(o.VendorAvailability))
		for k, v := range o.VendorAvailability {
			out.VendorAvailability[k] = v
		}
	}
	out.PaymentResult = clonePtr(o.PaymentResult)
	out.PaymentProof = clonePtr(o.PaymentProof)
	out.Refund = clonePtr(o.Refund)
	out.AssignedDelivery = clonePtr(o.AssignedDelivery)
	out.DeliveryAddress = clonePtr(o.DeliveryAddress)
	out.Handover = clonePtr(o.Handover)
	out.PaidAt = clonePtr(o.PaidAt)
	out.PaymentProofSubmittedAt = clonePtr(o.PaymentProofSubmittedAt)
	out.ActualDelivery = clonePtr(o.ActualDelivery)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
