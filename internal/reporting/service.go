package reporting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/metrics"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
	"github.com/shopspring/decimal"
)

// OrderReader is the read-only order surface the reporting engine
// consumes. Reports never mutate orders.
type OrderReader interface {
	List(ctx context.Context) ([]orders.Order, error)
}

// Service builds payment-verification reports, runs export jobs and
// manages report configs with their auto-refresh timers.
type Service struct {
	orders  OrderReader
	gateway wallet.Service
	logg    *logger.Logger
	metrics *metrics.ReportMetrics
	cfg     config.ReportsConfig
	now     func() time.Time

	mu      sync.Mutex
	jobs    map[string]*ExportJob
	configs map[string]*ReportConfig
	timers  map[string]*refreshTimer
}

// ServiceParams configure the reporting service. Metrics may be nil.
type ServiceParams struct {
	Orders  OrderReader
	Gateway wallet.Service
	Logger  *logger.Logger
	Metrics *metrics.ReportMetrics
	Config  config.ReportsConfig
	NowFunc func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.NowFunc
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:  params.Orders,
		gateway: params.Gateway,
		logg:    params.Logger,
		metrics: params.Metrics,
		cfg:     params.Config,
		now:     now,
		jobs:    make(map[string]*ExportJob),
		configs: make(map[string]*ReportConfig),
		timers:  make(map[string]*refreshTimer),
	}, nil
}

// PaymentVerificationReport returns all orders awaiting payment
// verification, filtered and summarized, alongside the recent wallet
// transactions the admin screens show next to them.
func (s *Service) PaymentVerificationReport(ctx context.Context, filters Filters) (*Report, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	rows := make([]Row, 0)
	summary := Summary{
		TotalAmount:     decimal.Zero,
		AverageAmount:   decimal.Zero,
		ByPaymentMethod: make(map[enums.PaymentMethod]int),
	}
	cutoff := generatedAt.Add(-24 * time.Hour)

	for _, o := range all {
		if o.VerificationStatus != enums.VerificationStatusPending {
			continue
		}
		if !matchesFilters(o, filters) {
			continue
		}
		rows = append(rows, Row{
			OrderID:          o.ID,
			CustomerName:     o.CustomerName,
			PaymentMethod:    o.PaymentMethod,
			Amount:           o.Total,
			TransactionID:    o.TransactionID,
			ProofSubmittedAt: o.PaymentProofSubmittedAt,
			CreatedAt:        o.CreatedAt,
		})
		summary.TotalPending++
		summary.TotalAmount = summary.TotalAmount.Add(o.Total)
		summary.ByPaymentMethod[o.PaymentMethod]++
		if o.CreatedAt.After(cutoff) {
			summary.RecentActivity++
		}
	}
	if summary.TotalPending > 0 {
		summary.AverageAmount = summary.TotalAmount.DivRound(decimal.NewFromInt(int64(summary.TotalPending)), 2)
	}

	limit := s.cfg.WalletTxLimit
	if limit <= 0 {
		limit = 10
	}
	transactions, err := s.gateway.WalletTransactions(ctx, limit)
	if err != nil {
		// Wallet history is supporting context, not report substance.
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "wallet transactions unavailable for report")
		transactions = nil
	}

	return &Report{
		Data:               rows,
		WalletTransactions: transactions,
		Summary:            summary,
		Metadata: Metadata{
			GeneratedAt: generatedAt,
			Filters:     filters,
			RecordCount: len(rows),
		},
	}, nil
}

func validateFilters(filters Filters) error {
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date is after end date")
	}
	if filters.PaymentMethod != nil && !filters.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid payment method filter %q", *filters.PaymentMethod))
	}
	return nil
}

func matchesFilters(o orders.Order, filters Filters) bool {
	if filters.StartDate != nil && o.CreatedAt.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && o.CreatedAt.After(*filters.EndDate) {
		return false
	}
	if filters.Vendor != "" &&
		!strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(filters.Vendor)) {
		return false
	}
	if filters.PaymentMethod != nil && o.PaymentMethod != *filters.PaymentMethod {
		return false
	}
	return true
}
