package reporting

import (
	"time"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
	"github.com/shopspring/decimal"
)

// Filters narrow the payment-verification report. All fields are
// optional; Vendor is a case-insensitive substring match on the
// customer name.
type Filters struct {
	StartDate     *time.Time           `json:"start_date,omitempty"`
	EndDate       *time.Time           `json:"end_date,omitempty"`
	Vendor        string               `json:"vendor,omitempty"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
}

// Row is one pending verification in the report.
type Row struct {
	OrderID          int                 `json:"order_id"`
	CustomerName     string              `json:"customer_name"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	Amount           decimal.Decimal     `json:"amount"`
	TransactionID    string              `json:"transaction_id,omitempty"`
	ProofSubmittedAt *time.Time          `json:"proof_submitted_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Summary aggregates the filtered rows.
type Summary struct {
	TotalPending    int                         `json:"total_pending"`
	TotalAmount     decimal.Decimal             `json:"total_amount"`
	AverageAmount   decimal.Decimal             `json:"average_amount"`
	RecentActivity  int                         `json:"recent_activity"`
	ByPaymentMethod map[enums.PaymentMethod]int `json:"by_payment_method"`
}

// Metadata describes how and when the report was produced.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Filters     Filters   `json:"filters"`
	RecordCount int       `json:"record_count"`
}

// Report is the full payment-verification report payload.
type Report struct {
	Data               []Row                `json:"data"`
	WalletTransactions []wallet.Transaction `json:"wallet_transactions"`
	Summary            Summary              `json:"summary"`
	Metadata           Metadata             `json:"metadata"`
}

// ExportJob tracks one asynchronous export from creation to its terminal
// state. A job is never reused.
type ExportJob struct {
	ID          string             `json:"id"`
	ReportType  enums.ReportType   `json:"report_type"`
	Format      enums.ExportFormat `json:"format"`
	Filters     Filters            `json:"filters"`
	Status      enums.ExportStatus `json:"status"`
	Progress    int                `json:"progress"`
	FileName    string             `json:"file_name,omitempty"`
	FileURL     string             `json:"file_url,omitempty"`
	FileSize    int64              `json:"file_size,omitempty"`
	RecordCount int                `json:"record_count"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	FailedAt    *time.Time         `json:"failed_at,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// ReportConfig is a saved report definition. An enabled config with
// AutoRefresh owns zero or one polling timer, keyed by its type.
type ReportConfig struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            enums.ReportType `json:"type"`
	Filters         Filters          `json:"filters"`
	AutoRefresh     bool             `json:"auto_refresh"`
	RefreshInterval time.Duration    `json:"refresh_interval"`
	Priority        int              `json:"priority"`
	Enabled         bool             `json:"enabled"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
