package orders

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/api/validators"
	internalorders "github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/payments"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
)

type verificationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=verified rejected"`
}

// UpdateVerification resolves a pending payment verification with an
// explicit admin decision.
func UpdateVerification(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req verificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseVerificationStatus(req.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decision"))
			return
		}
		updated, err := svc.UpdateVerificationStatus(r.Context(), id, decision, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type verifyPaymentRequest struct {
	ProofRef string `json:"proof_ref"`
	Notes    string `json:"notes"`
}

// VerifyPayment asks the payment gateway to check the order's
// transaction and resolves the verification with its answer.
func VerifyPayment(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.VerifyPayment(r.Context(), id, wallet.Evidence{
			ProofRef: req.ProofRef,
			Notes:    req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type retryPaymentRequest struct {
	PaymentMethod *string               `json:"payment_method"`
	TransactionID string                `json:"transaction_id"`
	PaymentResult *paymentResultRequest `json:"payment_result"`
}

// RetryPayment re-records payment for an order whose payment failed.
func RetryPayment(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req retryPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.RetryInput{TransactionID: req.TransactionID}
		if req.PaymentMethod != nil {
			method, err := enums.ParsePaymentMethod(*req.PaymentMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment method"))
				return
			}
			input.PaymentMethod = &method
		}
		if req.PaymentResult != nil {
			input.PaymentResult = &internalorders.PaymentResult{
				TransactionID:        req.PaymentResult.TransactionID,
				Provider:             req.PaymentResult.Provider,
				Amount:               req.PaymentResult.Amount,
				RequiresVerification: req.PaymentResult.RequiresVerification,
			}
		}

		updated, err := svc.RetryPayment(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type refundRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason" validate:"required"`
}

// Refund records a refund request against the order.
func Refund(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.ProcessRefund(r.Context(), id, req.Amount, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
