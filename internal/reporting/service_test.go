package reporting

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
	"github.com/shopspring/decimal"
)

type stubOrders struct {
	listFn func(ctx context.Context) ([]orders.Order, error)
}

func (s *stubOrders) List(ctx context.Context) ([]orders.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

type stubGateway struct {
	txFn func(ctx context.Context, limit int) ([]wallet.Transaction, error)
}

func (s *stubGateway) ProcessWalletPayment(ctx context.Context, amount decimal.Decimal, orderID int) (*wallet.Transaction, error) {
	return nil, fmt.Errorf("not used")
}

func (s *stubGateway) VerifyPayment(ctx context.Context, transactionID string, evidence wallet.Evidence) (*wallet.VerificationResult, error) {
	return nil, fmt.Errorf("not used")
}

func (s *stubGateway) WalletBalance(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubGateway) WalletTransactions(ctx context.Context, limit int) ([]wallet.Transaction, error) {
	if s.txFn != nil {
		return s.txFn(ctx, limit)
	}
	return []wallet.Transaction{{ID: "WTX-1"}}, nil
}

func newTestService(t *testing.T, reader OrderReader, gateway wallet.Service) *Service {
	t.Helper()
	if reader == nil {
		reader = &stubOrders{}
	}
	if gateway == nil {
		gateway = &stubGateway{}
	}
	svc, err := NewService(ServiceParams{
		Orders:  reader,
		Gateway: gateway,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config: config.ReportsConfig{
			ExportHost:             "storage.sahulat.pk",
			ExportStepDelay:        time.Millisecond,
			DefaultRefreshInterval: 5 * time.Millisecond,
			WalletTxLimit:          10,
		},
	})
	if err != nil {
		t.Fatalf("reporting service: %v", err)
	}
	return svc
}

func pendingOrder(id int, name string, method enums.PaymentMethod, total int64, createdAt time.Time) orders.Order {
	return orders.Order{
		ID:                 id,
		CustomerName:       name,
		PaymentMethod:      method,
		Total:              decimal.NewFromInt(total),
		VerificationStatus: enums.VerificationStatusPending,
		CreatedAt:          createdAt,
	}
}

func TestPaymentVerificationReportSummary(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		return []orders.Order{
			pendingOrder(1, "Ayesha Khan", enums.PaymentMethodBank, 1000, now.Add(-2*time.Hour)),
			pendingOrder(2, "Bilal Sheikh", enums.PaymentMethodJazzCash, 2000, now.Add(-48*time.Hour)),
			// Resolved orders never appear.
			{ID: 3, VerificationStatus: enums.VerificationStatusVerified, Total: decimal.NewFromInt(9999)},
			{ID: 4, Total: decimal.NewFromInt(9999)},
		}, nil
	}}
	svc := newTestService(t, reader, nil)
	svc.now = func() time.Time { return now }

	report, err := svc.PaymentVerificationReport(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Data))
	}
	if report.Summary.TotalPending != 2 {
		t.Fatalf("total pending: %d", report.Summary.TotalPending)
	}
	if !report.Summary.TotalAmount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("total amount: %s", report.Summary.TotalAmount)
	}
	if !report.Summary.AverageAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("average amount: %s", report.Summary.AverageAmount)
	}
	if report.Summary.RecentActivity != 1 {
		t.Fatalf("recent activity: %d", report.Summary.RecentActivity)
	}
	if report.Summary.ByPaymentMethod[enums.PaymentMethodBank] != 1 ||
		report.Summary.ByPaymentMethod[enums.PaymentMethodJazzCash] != 1 {
		t.Fatalf("by payment method: %v", report.Summary.ByPaymentMethod)
	}
	if report.Metadata.RecordCount != 2 {
		t.Fatalf("record count: %d", report.Metadata.RecordCount)
	}
	if len(report.WalletTransactions) != 1 {
		t.Fatalf("wallet transactions missing: %d", len(report.WalletTransactions))
	}
}

func TestPaymentVerificationReportFilters(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		return []orders.Order{
			pendingOrder(1, "Ayesha Khan", enums.PaymentMethodBank, 1000, now.Add(-time.Hour)),
			pendingOrder(2, "Bilal Sheikh", enums.PaymentMethodJazzCash, 2000, now.Add(-72*time.Hour)),
		}, nil
	}}
	svc := newTestService(t, reader, nil)

	// Vendor substring is case-insensitive.
	report, err := svc.PaymentVerificationReport(context.Background(), Filters{Vendor: "khan"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Data) != 1 || report.Data[0].OrderID != 1 {
		t.Fatalf("vendor filter: %+v", report.Data)
	}

	method := enums.PaymentMethodJazzCash
	report, err = svc.PaymentVerificationReport(context.Background(), Filters{PaymentMethod: &method})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Data) != 1 || report.Data[0].OrderID != 2 {
		t.Fatalf("method filter: %+v", report.Data)
	}

	start := now.Add(-24 * time.Hour)
	report, err = svc.PaymentVerificationReport(context.Background(), Filters{StartDate: &start})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Data) != 1 || report.Data[0].OrderID != 1 {
		t.Fatalf("date filter: %+v", report.Data)
	}
}

func TestPaymentVerificationReportRejectsInvertedRange(t *testing.T) {
	svc := newTestService(t, nil, nil)

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.PaymentVerificationReport(context.Background(), Filters{StartDate: &start, EndDate: &end})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPaymentVerificationReportToleratesWalletOutage(t *testing.T) {
	gateway := &stubGateway{txFn: func(ctx context.Context, limit int) ([]wallet.Transaction, error) {
		return nil, fmt.Errorf("gateway down")
	}}
	svc := newTestService(t, nil, gateway)

	report, err := svc.PaymentVerificationReport(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("wallet outage must not fail the report: %v", err)
	}
	if report.WalletTransactions != nil {
		t.Fatal("expected no transactions during outage")
	}
}

func TestReportConfigCRUD(t *testing.T) {
	svc := newTestService(t, nil, nil)

	created, err := svc.CreateReportConfig(ConfigInput{
		Name:     "daily verifications",
		Type:     enums.ReportTypePaymentVerification,
		Priority: 2,
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("config id not assigned")
	}

	name := "weekly verifications"
	updated, err := svc.UpdateReportConfig(created.ID, ConfigPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name not updated: %s", updated.Name)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatal("UpdatedAt went backwards")
	}

	if err := svc.DeleteReportConfig(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.ReportConfigByID(created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
}

func TestCreateReportConfigRejectsUnknownType(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.CreateReportConfig(ConfigInput{Name: "sales", Type: "sales_summary"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnknownReportType) {
		t.Fatalf("expected UNKNOWN_REPORT_TYPE, got %v", err)
	}
}

func TestUpdateReportConfigTogglesAutoRefresh(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.StopAll()

	created, err := svc.CreateReportConfig(ConfigInput{
		Name:    "pv",
		Type:    enums.ReportTypePaymentVerification,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.timerCount() != 0 {
		t.Fatal("no timer expected before autoRefresh")
	}

	on := true
	if _, err := svc.UpdateReportConfig(created.ID, ConfigPatch{AutoRefresh: &on}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if svc.timerCount() != 1 {
		t.Fatal("timer not started when autoRefresh enabled")
	}

	off := false
	if _, err := svc.UpdateReportConfig(created.ID, ConfigPatch{AutoRefresh: &off}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if svc.timerCount() != 0 {
		t.Fatal("timer not stopped when autoRefresh disabled")
	}
}

func TestDeleteReportConfigStopsTimer(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.StopAll()

	created, err := svc.CreateReportConfig(ConfigInput{
		Name:        "pv",
		Type:        enums.ReportTypePaymentVerification,
		AutoRefresh: true,
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.timerCount() != 1 {
		t.Fatal("timer not started on create")
	}

	if err := svc.DeleteReportConfig(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.timerCount() != 0 {
		t.Fatal("timer not stopped on delete")
	}
}

func (s *Service) timerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
