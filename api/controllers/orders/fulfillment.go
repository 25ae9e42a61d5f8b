package orders

import (
	"net/http"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	"github.com/sahulatbazaar/sahulat-backend/internal/fulfillment"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

type stageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// UpdateStage advances the order's fulfillment stage.
func UpdateStage(svc *fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req stageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// The service owns stage validation so unknown stages map to the
		// fulfillment-specific error code.
		updated, err := svc.UpdateStage(r.Context(), id, enums.FulfillmentStage(req.Stage))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type availabilityRequest struct {
	ProductID int    `json:"product_id" validate:"required,min=1"`
	VendorID  int    `json:"vendor_id" validate:"required,min=1"`
	Available bool   `json:"available"`
	Notes     string `json:"notes"`
}

// UpdateAvailability records a vendor's availability answer for a line
// item.
func UpdateAvailability(svc *fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req availabilityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateVendorAvailability(r.Context(), id, fulfillment.AvailabilityInput{
			ProductID: req.ProductID,
			VendorID:  req.VendorID,
			Available: req.Available,
			Notes:     req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type handoverRequest struct {
	VendorID  int    `json:"vendor_id" validate:"required,min=1"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}

// ConfirmHandover records the vendor-to-courier transfer.
func ConfirmHandover(svc *fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req handoverRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.ConfirmHandover(r.Context(), id, fulfillment.HandoverInput{
			VendorID:  req.VendorID,
			Signature: req.Signature,
			Notes:     req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ListVendorOrders returns the orders routed to a vendor.
func ListVendorOrders(svc *fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParseQueryInt(r, "vendor_id", 0, 1, 1<<31-1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if vendorID == 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "vendor_id query parameter required"))
			return
		}
		list, err := svc.ListVendorOrders(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
