// Package wallet wraps the external payment gateway. The gateway's wire
// protocol is owned by another team; this package only pins down the
// contract the order lifecycle depends on and ships a simulated client
// for local environments and tests.
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single wallet movement as reported by the gateway.
type Transaction struct {
	ID        string          `json:"id"`
	OrderID   int             `json:"order_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// VerificationResult is the gateway's answer to a proof check.
type VerificationResult struct {
	Verified    bool         `json:"verified"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

// Evidence carries whatever the admin submitted alongside a verification
// request. The gateway treats it opaquely.
type Evidence struct {
	ProofRef string `json:"proof_ref,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Service is the payment gateway contract consumed by the order
// lifecycle and the reporting engine.
type Service interface {
	ProcessWalletPayment(ctx context.Context, amount decimal.Decimal, orderID int) (*Transaction, error)
	VerifyPayment(ctx context.Context, transactionID string, evidence Evidence) (*VerificationResult, error)
	WalletBalance(ctx context.Context) (decimal.Decimal, error)
	WalletTransactions(ctx context.Context, limit int) ([]Transaction, error)
}
