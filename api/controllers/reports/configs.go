package reports

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	"github.com/sahulatbazaar/sahulat-backend/internal/reporting"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

type createConfigRequest struct {
	Name            string `json:"name" validate:"required"`
	Type            string `json:"type" validate:"required"`
	AutoRefresh     bool   `json:"auto_refresh"`
	RefreshInterval int    `json:"refresh_interval_seconds" validate:"min=0"`
	Priority        int    `json:"priority"`
	Enabled         bool   `json:"enabled"`
}

// CreateConfig saves a new report config.
func CreateConfig(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createConfigRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateReportConfig(reporting.ConfigInput{
			Name:            req.Name,
			Type:            enums.ReportType(req.Type),
			AutoRefresh:     req.AutoRefresh,
			RefreshInterval: time.Duration(req.RefreshInterval) * time.Second,
			Priority:        req.Priority,
			Enabled:         req.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListConfigs returns all report configs.
func ListConfigs(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ReportConfigs())
	}
}

// GetConfig returns one report config.
func GetConfig(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.ReportConfigByID(chi.URLParam(r, "configID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

type updateConfigRequest struct {
	Name            *string `json:"name"`
	AutoRefresh     *bool   `json:"auto_refresh"`
	RefreshInterval *int    `json:"refresh_interval_seconds"`
	Priority        *int    `json:"priority"`
	Enabled         *bool   `json:"enabled"`
}

// UpdateConfig merges a partial update over a report config, starting or
// stopping its auto-refresh timer as needed.
func UpdateConfig(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateConfigRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch := reporting.ConfigPatch{
			Name:        req.Name,
			AutoRefresh: req.AutoRefresh,
			Priority:    req.Priority,
			Enabled:     req.Enabled,
		}
		if req.RefreshInterval != nil {
			interval := time.Duration(*req.RefreshInterval) * time.Second
			patch.RefreshInterval = &interval
		}
		updated, err := svc.UpdateReportConfig(chi.URLParam(r, "configID"), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// DeleteConfig removes a report config.
func DeleteConfig(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configID := chi.URLParam(r, "configID")
		if err := svc.DeleteReportConfig(configID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": configID})
	}
}
