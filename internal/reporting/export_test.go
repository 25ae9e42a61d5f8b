package reporting

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
)

func waitForTerminal(t *testing.T, svc *Service, jobID string) ExportJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.ExportJobByID(jobID)
		if err != nil {
			t.Fatalf("job lookup: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("export job %s never reached a terminal state", jobID)
	return ExportJob{}
}

func TestExportRejectsUnknownReportType(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.Export(context.Background(), "inventory", enums.ExportFormatCSV, Filters{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnknownReportType) {
		t.Fatalf("expected UNKNOWN_REPORT_TYPE, got %v", err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.Export(context.Background(), enums.ReportTypePaymentVerification, "docx", Filters{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportCompletesWithArtifact(t *testing.T) {
	now := time.Now()
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		return []orders.Order{
			pendingOrder(1, "Ayesha Khan", enums.PaymentMethodBank, 1000, now),
			pendingOrder(2, "Bilal Sheikh", enums.PaymentMethodBank, 2000, now),
		}, nil
	}}
	svc := newTestService(t, reader, nil)

	created, err := svc.Export(context.Background(), enums.ReportTypePaymentVerification, enums.ExportFormatPDF, Filters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if created.Status != enums.ExportStatusProcessing || created.Progress != 0 {
		t.Fatalf("fresh job must be processing at 0, got %s/%d", created.Status, created.Progress)
	}

	job := waitForTerminal(t, svc, created.ID)
	if job.Status != enums.ExportStatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", job.Status, job.Error)
	}
	if job.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", job.Progress)
	}
	if job.RecordCount != 2 {
		t.Fatalf("record count: %d", job.RecordCount)
	}
	// 2 records * 150 bytes * 1.5 pdf multiplier.
	if job.FileSize != 450 {
		t.Fatalf("file size: %d", job.FileSize)
	}
	if !strings.HasPrefix(job.FileURL, "https://storage.sahulat.pk/exports/payment_verification_") {
		t.Fatalf("file url: %s", job.FileURL)
	}
	if !strings.HasSuffix(job.FileURL, ".pdf") {
		t.Fatalf("file url extension: %s", job.FileURL)
	}
	if job.CompletedAt == nil {
		t.Fatal("CompletedAt not stamped")
	}
}

func TestExportEmptyReportStillProducesURL(t *testing.T) {
	svc := newTestService(t, nil, nil)

	created, err := svc.Export(context.Background(), enums.ReportTypePaymentVerification, enums.ExportFormatCSV, Filters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	job := waitForTerminal(t, svc, created.ID)
	if job.Status != enums.ExportStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.RecordCount != 0 || job.FileSize != 0 {
		t.Fatalf("expected empty artifact, got %d records / %d bytes", job.RecordCount, job.FileSize)
	}
	if job.FileURL == "" {
		t.Fatal("empty report must still produce a file url")
	}
}

func TestExportFailureCapturesError(t *testing.T) {
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		return nil, fmt.Errorf("store offline")
	}}
	svc := newTestService(t, reader, nil)

	created, err := svc.Export(context.Background(), enums.ReportTypePaymentVerification, enums.ExportFormatXLSX, Filters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	job := waitForTerminal(t, svc, created.ID)
	if job.Status != enums.ExportStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Error == "" {
		t.Fatal("failure reason not captured")
	}
	if job.FailedAt == nil {
		t.Fatal("FailedAt not stamped")
	}
	if job.FileURL != "" {
		t.Fatal("failed job must not carry a file url")
	}
}

func TestExportJobByIDMissing(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.ExportJobByID("nope")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStartAutoRefreshReplacesAndStopIsIdempotent(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.StopAll()

	if err := svc.StartAutoRefresh(enums.ReportTypePaymentVerification, 5*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.StartAutoRefresh(enums.ReportTypePaymentVerification, 10*time.Millisecond); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if svc.timerCount() != 1 {
		t.Fatalf("restart must replace, got %d timers", svc.timerCount())
	}

	svc.StopAutoRefresh(enums.ReportTypePaymentVerification)
	svc.StopAutoRefresh(enums.ReportTypePaymentVerification)
	if svc.timerCount() != 0 {
		t.Fatalf("expected no timers after stop, got %d", svc.timerCount())
	}
}

func TestStartAutoRefreshRejectsUnknownType(t *testing.T) {
	svc := newTestService(t, nil, nil)

	err := svc.StartAutoRefresh("inventory", time.Second)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnknownReportType) {
		t.Fatalf("expected UNKNOWN_REPORT_TYPE, got %v", err)
	}
}

func TestRefreshTickSurvivesFailures(t *testing.T) {
	calls := 0
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		calls++
		return nil, fmt.Errorf("transient")
	}}
	svc := newTestService(t, reader, nil)
	defer svc.StopAll()

	if err := svc.StartAutoRefresh(enums.ReportTypePaymentVerification, 2*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	svc.StopAutoRefresh(enums.ReportTypePaymentVerification)

	if calls < 2 {
		t.Fatalf("ticks must continue past failures, saw %d", calls)
	}
}

func TestRefreshAllAggregatesErrors(t *testing.T) {
	reader := &stubOrders{listFn: func(ctx context.Context) ([]orders.Order, error) {
		return nil, fmt.Errorf("store offline")
	}}
	svc := newTestService(t, reader, nil)

	if _, err := svc.CreateReportConfig(ConfigInput{
		Name:        "pv",
		Type:        enums.ReportTypePaymentVerification,
		AutoRefresh: true,
		Enabled:     true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	defer svc.StopAll()

	if err := svc.RefreshAll(context.Background()); err == nil {
		t.Fatal("expected aggregated refresh error")
	}
}
