package orders

import (
	"time"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Fixture returns the seed orders loaded on process start. The mix covers
// the three payment flows the admin screens exercise most: cash awaiting
// settlement, a bank transfer parked in verification, and a settled
// wallet order moving through fulfillment.
func Fixture() []Order {
	base := time.Now().Add(-48 * time.Hour)
	proofSubmitted := base.Add(26 * time.Hour)

	return []Order{
		{
			ID:           1,
			CustomerName: "Ayesha Khan",
			Items: []LineItem{
				{ProductID: 101, Price: decimal.NewFromInt(1200), Quantity: 2},
				{ProductID: 104, Price: decimal.NewFromInt(450), Quantity: 1},
			},
			Total:           decimal.NewFromInt(2850),
			TotalAmount:     decimal.NewFromInt(2850),
			PaymentMethod:   enums.PaymentMethodCash,
			PaymentStatus:   enums.PaymentStatusPending,
			Status:          enums.OrderStatusPending,
			DeliveryStatus:  enums.DeliveryStatusPending,
			DeliveryAddress: &Address{Street: "14-B Gulberg III", City: "Lahore", Phone: "+92 300 1234567"},
			CreatedAt:       base,
		},
		{
			ID:           2,
			CustomerName: "Bilal Ahmed",
			Items: []LineItem{
				{ProductID: 102, Price: decimal.NewFromInt(5600), Quantity: 1},
			},
			Total:              decimal.NewFromInt(5600),
			TotalAmount:        decimal.NewFromInt(5600),
			PaymentMethod:      enums.PaymentMethodBank,
			PaymentStatus:      enums.PaymentStatusPendingVerification,
			VerificationStatus: enums.VerificationStatusPending,
			Status:             enums.OrderStatusPaymentPending,
			DeliveryStatus:     enums.DeliveryStatusPending,
			TransactionID:      "BNK-775201",
			PaymentResult:      &PaymentResult{TransactionID: "BNK-775201", Provider: "bank", RequiresVerification: true},
			PaymentProof: &PaymentProof{
				FileName:   "receipt-775201.png",
				FileSize:   48123,
				UploadedAt: proofSubmitted,
				DataURL:    "data:image/png;base64,iVBORw0KGgo=",
				StoredAt:   proofSubmitted,
				Validated:  true,
				BackupRef:  "proof-backups/receipt-775201.png",
			},
			PaymentProofSubmittedAt: &proofSubmitted,
			DeliveryAddress:         &Address{Street: "Plot 9, Clifton Block 5", City: "Karachi", Phone: "+92 321 7654321"},
			CreatedAt:               base.Add(20 * time.Hour),
		},
		{
			ID:           3,
			CustomerName: "Sana Tariq",
			Items: []LineItem{
				{ProductID: 103, Price: decimal.NewFromInt(980), Quantity: 3},
			},
			Total:            decimal.NewFromInt(2940),
			TotalAmount:      decimal.NewFromInt(2940),
			PaymentMethod:    enums.PaymentMethodWallet,
			PaymentStatus:    enums.PaymentStatusCompleted,
			ApprovalStatus:   enums.ApprovalStatusApproved,
			Status:           enums.OrderStatusPacked,
			FulfillmentStage: enums.FulfillmentStagePacked,
			DeliveryStatus:   enums.DeliveryStatusAssigned,
			TransactionID:    "WLT-1092",
			PaymentResult:    &PaymentResult{TransactionID: "WLT-1092", Provider: "wallet"},
			AssignedDelivery: &DeliveryPersonnel{Name: "Imran Haider", Phone: "+92 333 4455667", ETA: "45 min", Vehicle: "bike"},
			DeliveryAddress:  &Address{Street: "House 12, F-8/3", City: "Islamabad", Phone: "+92 345 9988776"},
			CreatedAt:        base.Add(30 * time.Hour),
		},
	}
}
