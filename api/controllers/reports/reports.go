package reports

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	"github.com/sahulatbazaar/sahulat-backend/internal/reporting"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

func parseFilters(r *http.Request) (reporting.Filters, error) {
	filters := reporting.Filters{
		Vendor: strings.TrimSpace(r.URL.Query().Get("vendor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("start_date")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return reporting.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_date must be RFC 3339")
		}
		filters.StartDate = &start
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end_date")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return reporting.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "end_date must be RFC 3339")
		}
		filters.EndDate = &end
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return reporting.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment_method")
		}
		filters.PaymentMethod = &method
	}
	return filters, nil
}

// PaymentVerification returns the payment-verification report.
func PaymentVerification(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.PaymentVerificationReport(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

type exportRequest struct {
	ReportType string `json:"report_type" validate:"required"`
	Format     string `json:"format" validate:"required"`
}

// Export starts an export job and returns its initial snapshot.
func Export(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req exportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Report type and format pass through unparsed so unknown values
		// surface with their reporting-specific codes.
		job, err := svc.Export(r.Context(), enums.ReportType(req.ReportType), enums.ExportFormat(req.Format), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, job)
	}
}

// ExportJob returns one export job's current snapshot.
func ExportJob(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := svc.ExportJobByID(chi.URLParam(r, "jobID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

// ExportJobs lists all export jobs, newest first.
func ExportJobs(svc *reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ExportJobs())
	}
}
