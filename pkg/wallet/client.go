package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatewayError is the coded failure the gateway reports. The code is kept
// so callers can branch without parsing message text.
type GatewayError struct {
	GatewayCode string
	Message     string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.GatewayCode, e.Message)
}

const (
	GatewayCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	GatewayCodeInvalidAmount     = "INVALID_AMOUNT"
	GatewayCodeUnknownTxn        = "UNKNOWN_TRANSACTION"
)

// ClientOptions configure the simulated gateway client.
type ClientOptions struct {
	InitialBalance decimal.Decimal
	Latency        time.Duration
	NowFunc        func() time.Time
}

// Client is an in-process stand-in for the real wallet gateway. It keeps
// a balance and a transaction ledger so the reporting engine has real
// data to pull.
type Client struct {
	mu      sync.Mutex
	balance decimal.Decimal
	ledger  []Transaction
	latency time.Duration
	now     func() time.Time
}

var _ Service = (*Client)(nil)

// NewClient builds a simulated gateway client.
func NewClient(opts ClientOptions) *Client {
	now := opts.NowFunc
	if now == nil {
		now = time.Now
	}
	return &Client{
		balance: opts.InitialBalance,
		latency: opts.Latency,
		now:     now,
	}
}

func (c *Client) ProcessWalletPayment(ctx context.Context, amount decimal.Decimal, orderID int) (*Transaction, error) {
	if err := c.simulateLatency(ctx); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &GatewayError{GatewayCode: GatewayCodeInvalidAmount, Message: "charge amount must be positive"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance.LessThan(amount) {
		return nil, &GatewayError{GatewayCode: GatewayCodeInsufficientFunds, Message: "wallet balance too low"}
	}
	c.balance = c.balance.Sub(amount)
	txn := Transaction{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Amount:    amount,
		Type:      "debit",
		Status:    "completed",
		CreatedAt: c.now(),
	}
	c.ledger = append(c.ledger, txn)
	return &txn, nil
}

func (c *Client) VerifyPayment(ctx context.Context, transactionID string, evidence Evidence) (*VerificationResult, error) {
	if err := c.simulateLatency(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.ledger {
		if c.ledger[i].ID == transactionID {
			txn := c.ledger[i]
			return &VerificationResult{Verified: true, Transaction: &txn}, nil
		}
	}
	// Unknown transactions are not an error at the gateway level; the
	// admin decides what a failed lookup means.
	return &VerificationResult{Verified: false}, nil
}

func (c *Client) WalletBalance(ctx context.Context) (decimal.Decimal, error) {
	if err := c.simulateLatency(ctx); err != nil {
		return decimal.Zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance, nil
}

func (c *Client) WalletTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if err := c.simulateLatency(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit <= 0 || limit > len(c.ledger) {
		limit = len(c.ledger)
	}
	// Most recent first.
	out := make([]Transaction, 0, limit)
	for i := len(c.ledger) - 1; i >= len(c.ledger)-limit; i-- {
		out = append(out, c.ledger[i])
	}
	return out, nil
}

func (c *Client) simulateLatency(ctx context.Context) error {
	if c.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.latency):
		return nil
	}
}
