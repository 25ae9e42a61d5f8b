package reporting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
)

// ConfigInput is the caller-supplied part of a report config.
type ConfigInput struct {
	Name            string
	Type            enums.ReportType
	Filters         Filters
	AutoRefresh     bool
	RefreshInterval time.Duration
	Priority        int
	Enabled         bool
}

// ConfigPatch is a partial config update. Nil fields stay untouched.
type ConfigPatch struct {
	Name            *string
	Filters         *Filters
	AutoRefresh     *bool
	RefreshInterval *time.Duration
	Priority        *int
	Enabled         *bool
}

// CreateReportConfig saves a new config. A config created with
// AutoRefresh enabled starts its polling timer immediately.
func (s *Service) CreateReportConfig(input ConfigInput) (ReportConfig, error) {
	if input.Name == "" {
		return ReportConfig{}, pkgerrors.New(pkgerrors.CodeValidation, "report name required")
	}
	if input.Type != enums.ReportTypePaymentVerification {
		return ReportConfig{}, pkgerrors.New(pkgerrors.CodeUnknownReportType,
			fmt.Sprintf("unknown report type %q", input.Type))
	}
	if err := validateFilters(input.Filters); err != nil {
		return ReportConfig{}, err
	}

	now := s.now()
	cfg := &ReportConfig{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Type:            input.Type,
		Filters:         input.Filters,
		AutoRefresh:     input.AutoRefresh,
		RefreshInterval: input.RefreshInterval,
		Priority:        input.Priority,
		Enabled:         input.Enabled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.mu.Lock()
	s.configs[cfg.ID] = cfg
	s.mu.Unlock()

	if cfg.Enabled && cfg.AutoRefresh {
		if err := s.StartAutoRefresh(cfg.Type, cfg.RefreshInterval); err != nil {
			return ReportConfig{}, err
		}
	}
	return *cfg, nil
}

// ReportConfigByID returns a snapshot of the config.
func (s *Service) ReportConfigByID(id string) (ReportConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[id]
	if !ok {
		return ReportConfig{}, pkgerrors.New(pkgerrors.CodeNotFound, "report config not found")
	}
	return *cfg, nil
}

// ReportConfigs returns snapshots of all configs, highest priority first.
func (s *Service) ReportConfigs() []ReportConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ReportConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, *cfg)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Priority > out[i].Priority {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// UpdateReportConfig merges the patch over the stored config. Toggling
// AutoRefresh (or disabling the config) starts or stops the type's
// polling timer as a side effect.
func (s *Service) UpdateReportConfig(id string, patch ConfigPatch) (ReportConfig, error) {
	if patch.Filters != nil {
		if err := validateFilters(*patch.Filters); err != nil {
			return ReportConfig{}, err
		}
	}

	s.mu.Lock()
	cfg, ok := s.configs[id]
	if !ok {
		s.mu.Unlock()
		return ReportConfig{}, pkgerrors.New(pkgerrors.CodeNotFound, "report config not found")
	}

	wasPolling := cfg.Enabled && cfg.AutoRefresh
	if patch.Name != nil {
		cfg.Name = *patch.Name
	}
	if patch.Filters != nil {
		cfg.Filters = *patch.Filters
	}
	if patch.AutoRefresh != nil {
		cfg.AutoRefresh = *patch.AutoRefresh
	}
	if patch.RefreshInterval != nil {
		cfg.RefreshInterval = *patch.RefreshInterval
	}
	if patch.Priority != nil {
		cfg.Priority = *patch.Priority
	}
	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
	}
	cfg.UpdatedAt = s.now()
	snapshot := *cfg
	s.mu.Unlock()

	isPolling := snapshot.Enabled && snapshot.AutoRefresh
	switch {
	case isPolling && !wasPolling:
		if err := s.StartAutoRefresh(snapshot.Type, snapshot.RefreshInterval); err != nil {
			return ReportConfig{}, err
		}
	case !isPolling && wasPolling:
		s.StopAutoRefresh(snapshot.Type)
	case isPolling && patch.RefreshInterval != nil:
		// Interval changed while polling: restart with the new cadence.
		if err := s.StartAutoRefresh(snapshot.Type, snapshot.RefreshInterval); err != nil {
			return ReportConfig{}, err
		}
	}
	return snapshot, nil
}

// DeleteReportConfig removes the config, stopping its timer when it was
// the one polling.
func (s *Service) DeleteReportConfig(id string) error {
	s.mu.Lock()
	cfg, ok := s.configs[id]
	if !ok {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "report config not found")
	}
	wasPolling := cfg.Enabled && cfg.AutoRefresh
	reportType := cfg.Type
	delete(s.configs, id)
	s.mu.Unlock()

	if wasPolling {
		s.StopAutoRefresh(reportType)
	}
	return nil
}
