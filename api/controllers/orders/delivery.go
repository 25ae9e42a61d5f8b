package orders

import (
	"net/http"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	"github.com/sahulatbazaar/sahulat-backend/internal/delivery"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

type deliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"required"`
}

// UpdateDeliveryStatus records the courier's delivery progress.
func UpdateDeliveryStatus(svc *delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req deliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseDeliveryStatus(req.DeliveryStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "delivery status"))
			return
		}
		updated, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
