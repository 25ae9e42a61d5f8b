package orders

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/payments"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

func parseOrderID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a positive integer")
	}
	return id, nil
}

// List returns every order.
func List(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns a single order.
func Detail(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type lineItemRequest struct {
	ProductID int             `json:"product_id" validate:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

type paymentResultRequest struct {
	TransactionID        string          `json:"transaction_id"`
	Provider             string          `json:"provider"`
	Amount               decimal.Decimal `json:"amount"`
	RequiresVerification bool            `json:"requires_verification"`
}

type paymentProofRequest struct {
	FileName string `json:"file_name" validate:"required"`
	FileSize int64  `json:"file_size"`
	DataURL  string `json:"data_url" validate:"required"`
}

type addressRequest struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Phone  string `json:"phone"`
}

type createOrderRequest struct {
	CustomerName    string                `json:"customer_name" validate:"required"`
	Items           []lineItemRequest     `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal       `json:"total"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
	PaymentStatus   *string               `json:"payment_status"`
	TransactionID   string                `json:"transaction_id"`
	PaymentResult   *paymentResultRequest `json:"payment_result"`
	PaymentProof    *paymentProofRequest  `json:"payment_proof"`
	DeliveryAddress *addressRequest       `json:"delivery_address"`
}

func (req createOrderRequest) toInput() (payments.CheckoutInput, error) {
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return payments.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment method")
	}

	input := payments.CheckoutInput{
		CustomerName:  req.CustomerName,
		Total:         req.Total,
		PaymentMethod: method,
		TransactionID: req.TransactionID,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, orders.LineItem{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	if req.PaymentStatus != nil {
		status, err := enums.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return payments.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment status")
		}
		input.PaymentStatus = &status
	}
	if req.PaymentResult != nil {
		input.PaymentResult = &orders.PaymentResult{
			TransactionID:        req.PaymentResult.TransactionID,
			Provider:             req.PaymentResult.Provider,
			Amount:               req.PaymentResult.Amount,
			RequiresVerification: req.PaymentResult.RequiresVerification,
		}
	}
	if req.PaymentProof != nil {
		input.PaymentProof = &payments.ProofUpload{
			FileName: req.PaymentProof.FileName,
			FileSize: req.PaymentProof.FileSize,
			DataURL:  req.PaymentProof.DataURL,
		}
	}
	if req.DeliveryAddress != nil {
		input.DeliveryAddress = &orders.Address{
			Street: req.DeliveryAddress.Street,
			City:   req.DeliveryAddress.City,
			Phone:  req.DeliveryAddress.Phone,
		}
	}
	return input, nil
}

// Create places a new order through the payment checkout rules.
func Create(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type updateOrderRequest struct {
	CustomerName *string            `json:"customer_name"`
	Items        *[]lineItemRequest `json:"items"`
	Total        *decimal.Decimal   `json:"total"`
	TotalAmount  *decimal.Decimal   `json:"total_amount"`
	Status       *string            `json:"status"`
}

// Update applies a partial update to an order.
func Update(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := orders.Patch{
			CustomerName: req.CustomerName,
			Total:        req.Total,
			TotalAmount:  req.TotalAmount,
		}
		if req.Items != nil {
			items := make([]orders.LineItem, 0, len(*req.Items))
			for _, item := range *req.Items {
				items = append(items, orders.LineItem{
					ProductID: item.ProductID,
					Price:     item.Price,
					Quantity:  item.Quantity,
				})
			}
			patch.Items = &items
		}
		if req.Status != nil {
			status, err := enums.ParseOrderStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status"))
				return
			}
			patch.Status = &status
		}

		updated, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Delete removes an order.
func Delete(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": id})
	}
}
