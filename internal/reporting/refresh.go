package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"go.uber.org/multierr"
)

// refreshTimer is one recurring report refresh. stop is idempotent.
type refreshTimer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func refreshKey(reportType enums.ReportType) string {
	return fmt.Sprintf("%s_refresh", reportType)
}

// StartAutoRefresh begins a recurring refresh for the report type.
// Starting a type that already has a timer replaces it.
func (s *Service) StartAutoRefresh(reportType enums.ReportType, interval time.Duration) error {
	if reportType != enums.ReportTypePaymentVerification {
		return pkgerrors.New(pkgerrors.CodeUnknownReportType,
			fmt.Sprintf("unknown report type %q", reportType))
	}
	if interval <= 0 {
		interval = s.cfg.DefaultRefreshInterval
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	key := refreshKey(reportType)
	ctx, cancel := context.WithCancel(context.Background())
	timer := &refreshTimer{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.timers[key]
	s.timers[key] = timer
	s.mu.Unlock()
	if prev != nil {
		prev.stop()
	}

	logCtx := s.logg.WithReportType(ctx, string(reportType))
	go s.refreshLoop(logCtx, timer, reportType, interval)

	s.logg.Info(s.logg.WithField(logCtx, "interval", interval.String()), "report auto-refresh started")
	return nil
}

// StopAutoRefresh cancels the timer for the report type. Stopping a type
// with no timer is a no-op.
func (s *Service) StopAutoRefresh(reportType enums.ReportType) {
	key := refreshKey(reportType)

	s.mu.Lock()
	timer := s.timers[key]
	delete(s.timers, key)
	s.mu.Unlock()

	if timer != nil {
		timer.stop()
		s.logg.Info(s.logg.WithReportType(context.Background(), string(reportType)), "report auto-refresh stopped")
	}
}

// StopAll cancels every running timer. Called on shutdown.
func (s *Service) StopAll() {
	s.mu.Lock()
	timers := make([]*refreshTimer, 0, len(s.timers))
	for key, timer := range s.timers {
		timers = append(timers, timer)
		delete(s.timers, key)
	}
	s.mu.Unlock()

	for _, timer := range timers {
		timer.stop()
	}
}

func (t *refreshTimer) stop() {
	t.cancel()
	<-t.done
}

func (s *Service) refreshLoop(ctx context.Context, timer *refreshTimer, reportType enums.ReportType, interval time.Duration) {
	defer close(timer.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshOnce(ctx, reportType)
		}
	}
}

// refreshOnce rebuilds the report once. Failures are logged and counted,
// never propagated into the loop.
func (s *Service) refreshOnce(ctx context.Context, reportType enums.ReportType) {
	report, err := s.PaymentVerificationReport(ctx, Filters{})
	if err != nil {
		s.metrics.IncRefreshFailure(string(reportType))
		s.logg.Error(ctx, "report refresh tick failed", err)
		return
	}
	s.metrics.IncRefreshSuccess(string(reportType))
	s.logg.Info(s.logg.WithField(ctx, "record_count", report.Metadata.RecordCount), "report refreshed")
}

// RefreshAll rebuilds every enabled auto-refresh config's report once,
// aggregating failures. Used by the worker on demand.
func (s *Service) RefreshAll(ctx context.Context) error {
	s.mu.Lock()
	types := make([]enums.ReportType, 0, len(s.configs))
	seen := make(map[enums.ReportType]bool)
	for _, cfg := range s.configs {
		if cfg.Enabled && cfg.AutoRefresh && !seen[cfg.Type] {
			seen[cfg.Type] = true
			types = append(types, cfg.Type)
		}
	}
	s.mu.Unlock()

	var combined error
	for _, reportType := range types {
		if _, err := s.PaymentVerificationReport(ctx, Filters{}); err != nil {
			s.metrics.IncRefreshFailure(string(reportType))
			combined = multierr.Append(combined, fmt.Errorf("refresh %s: %w", reportType, err))
			continue
		}
		s.metrics.IncRefreshSuccess(string(reportType))
	}
	return combined
}
