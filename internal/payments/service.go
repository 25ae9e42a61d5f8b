package payments

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
	"github.com/shopspring/decimal"
)

// OrderMutator is the slice of the order state machine the payment
// lifecycle drives.
type OrderMutator interface {
	Create(ctx context.Context, draft orders.Order) (orders.Order, error)
	GetByID(ctx context.Context, id int) (orders.Order, error)
	Mutate(ctx context.Context, id int, fn func(orders.Order) (orders.Order, error)) (orders.Order, error)
	Delete(ctx context.Context, id int) error
}

// Service applies the payment rules of the order lifecycle: checkout,
// proof verification, retries and refunds.
type Service struct {
	orders  OrderMutator
	gateway wallet.Service
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams configure the payment service.
type ServiceParams struct {
	Orders  OrderMutator
	Gateway wallet.Service
	Logger  *logger.Logger
	NowFunc func() time.Time
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order mutator required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.NowFunc
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:  params.Orders,
		gateway: params.Gateway,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// ProofUpload is a proof-of-payment image submitted at checkout.
type ProofUpload struct {
	FileName string
	FileSize int64
	DataURL  string
}

// CheckoutInput is a new order draft plus its payment context.
type CheckoutInput struct {
	CustomerName    string
	Items           []orders.LineItem
	Total           decimal.Decimal
	PaymentMethod   enums.PaymentMethod
	PaymentStatus   *enums.PaymentStatus
	TransactionID   string
	PaymentResult   *orders.PaymentResult
	PaymentProof    *ProofUpload
	DeliveryAddress *orders.Address
}

var imageDataURLPattern = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// Checkout creates an order, enforcing the per-method payment contract
// and charging the wallet when that is the chosen method.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (orders.Order, error) {
	method := input.PaymentMethod
	if !method.IsValid() {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	if method.RequiresPaymentResult() && input.PaymentResult == nil {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodePaymentResultMissing,
			fmt.Sprintf("payment method %s requires a payment result", method))
	}
	if method.RequiresTransactionID() && (input.PaymentResult == nil || input.PaymentResult.TransactionID == "") {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeTransactionIDMissing,
			fmt.Sprintf("payment method %s requires a transaction id", method))
	}

	// An explicit transaction id wins over the one inside the result.
	transactionID := input.TransactionID
	if transactionID == "" && input.PaymentResult != nil {
		transactionID = input.PaymentResult.TransactionID
	}

	paymentStatus := enums.PaymentStatusCompleted
	if method == enums.PaymentMethodCash {
		paymentStatus = enums.PaymentStatusPending
	}
	if input.PaymentStatus != nil {
		paymentStatus = *input.PaymentStatus
	}

	draft := orders.Order{
		CustomerName:    input.CustomerName,
		Items:           input.Items,
		Total:           input.Total,
		PaymentMethod:   method,
		PaymentStatus:   paymentStatus,
		TransactionID:   transactionID,
		PaymentResult:   input.PaymentResult,
		DeliveryAddress: input.DeliveryAddress,
	}

	if method == enums.PaymentMethodBank && input.PaymentResult != nil && input.PaymentResult.RequiresVerification {
		draft.PaymentStatus = enums.PaymentStatusPendingVerification
		draft.Status = enums.OrderStatusPaymentPending
	}

	if input.PaymentProof != nil && method.AcceptsPaymentProof() {
		s.attachProof(ctx, &draft, input.PaymentProof)
	}

	created, err := s.orders.Create(ctx, draft)
	if err != nil {
		return orders.Order{}, err
	}

	if method == enums.PaymentMethodWallet {
		return s.chargeWallet(ctx, created)
	}
	return created, nil
}

func (s *Service) attachProof(ctx context.Context, draft *orders.Order, upload *ProofUpload) {
	now := s.now()
	validated := imageDataURLPattern.MatchString(upload.DataURL)
	if !validated {
		// Malformed proofs are still stored; the admin screens surface
		// the validation flag.
		logCtx := s.logg.WithField(ctx, "file_name", upload.FileName)
		s.logg.Warn(logCtx, "payment proof does not look like an image data url")
	}
	draft.PaymentProof = &orders.PaymentProof{
		FileName:   upload.FileName,
		FileSize:   upload.FileSize,
		UploadedAt: now,
		DataURL:    upload.DataURL,
		StoredAt:   now,
		Validated:  validated,
		BackupRef:  "proof-backups/" + upload.FileName,
	}
	draft.VerificationStatus = enums.VerificationStatusPending
	draft.PaymentProofSubmittedAt = &now
}

func (s *Service) chargeWallet(ctx context.Context, created orders.Order) (orders.Order, error) {
	txn, err := s.gateway.ProcessWalletPayment(ctx, created.Total, created.ID)
	if err != nil {
		// The order only exists to carry the charge; roll it back so a
		// failed checkout leaves no record behind.
		if delErr := s.orders.Delete(ctx, created.ID); delErr != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, created.ID), "rollback of failed wallet checkout", delErr)
		}
		return orders.Order{}, pkgerrors.Wrap(pkgerrors.CodeWalletPaymentFailed, err, "process wallet payment")
	}

	paidAt := s.now()
	return s.orders.Mutate(ctx, created.ID, func(o orders.Order) (orders.Order, error) {
		o.PaymentResult = &orders.PaymentResult{
			TransactionID: txn.ID,
			Provider:      "wallet",
			Amount:        txn.Amount,
		}
		o.TransactionID = txn.ID
		o.PaymentStatus = enums.PaymentStatusCompleted
		o.PaidAt = &paidAt
		return o, nil
	})
}

// UpdateVerificationStatus is the programmatic admin path for resolving a
// payment verification. allowUnset permits resolving an order that never
// had a proof submitted; a verification that already reached a terminal
// state is always rejected.
func (s *Service) UpdateVerificationStatus(ctx context.Context, orderID int, decision enums.VerificationStatus, allowUnset bool) (orders.Order, error) {
	if decision != enums.VerificationStatusVerified && decision != enums.VerificationStatusRejected {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "decision must be verified or rejected")
	}

	updated, err := s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		switch o.VerificationStatus {
		case enums.VerificationStatusPending:
		case enums.VerificationStatusNone:
			if !allowUnset {
				return orders.Order{}, pkgerrors.New(pkgerrors.CodeVerificationNotPending, "no payment verification pending")
			}
		default:
			return orders.Order{}, pkgerrors.New(pkgerrors.CodeVerificationNotPending,
				fmt.Sprintf("verification already %s", o.VerificationStatus))
		}
		applyVerificationDecision(&o, decision)
		return o, nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	if decision == enums.VerificationStatusVerified {
		s.scheduleConfirm(ctx, orderID)
	}
	return updated, nil
}

// VerifyPayment asks the gateway to check the order's transaction and
// resolves the pending verification with the outcome.
func (s *Service) VerifyPayment(ctx context.Context, orderID int, evidence wallet.Evidence) (orders.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if order.VerificationStatus != enums.VerificationStatusPending {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeVerificationNotPending, "no payment verification pending")
	}

	result, err := s.gateway.VerifyPayment(ctx, order.TransactionID, evidence)
	if err != nil {
		return orders.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment with gateway")
	}

	decision := enums.VerificationStatusRejected
	if result.Verified {
		decision = enums.VerificationStatusVerified
	}
	return s.UpdateVerificationStatus(ctx, orderID, decision, false)
}

func applyVerificationDecision(o *orders.Order, decision enums.VerificationStatus) {
	if decision == enums.VerificationStatusVerified {
		o.VerificationStatus = enums.VerificationStatusVerified
		o.PaymentStatus = enums.PaymentStatusCompleted
		o.ApprovalStatus = enums.ApprovalStatusApproved
		o.Status = enums.OrderStatusPending
		return
	}
	o.VerificationStatus = enums.VerificationStatusRejected
	o.PaymentStatus = enums.PaymentStatusVerificationFailed
	o.ApprovalStatus = enums.ApprovalStatusRejected
	o.Status = enums.OrderStatusPaymentRejected
}

// scheduleConfirm moves a freshly verified order on to confirmed as a
// detached follow-up. It re-enters the per-order serialization point, so
// its write is ordered against other mutations of the same order; its
// failure is logged and never surfaced to the verification caller.
func (s *Service) scheduleConfirm(ctx context.Context, orderID int) {
	logCtx := s.logg.WithOrderID(context.WithoutCancel(ctx), orderID)
	go func() {
		_, err := s.orders.Mutate(logCtx, orderID, func(o orders.Order) (orders.Order, error) {
			o.Status = enums.OrderStatusConfirmed
			return o, nil
		})
		if err != nil {
			s.logg.Error(logCtx, "post-verification confirm failed", err)
			return
		}
		s.logg.Info(logCtx, "order auto-confirmed after verification")
	}()
}

// RetryInput carries replacement payment data for a failed payment.
type RetryInput struct {
	PaymentMethod *enums.PaymentMethod
	PaymentResult *orders.PaymentResult
	TransactionID string
}

// RetryPayment re-records payment for an order whose payment has not
// completed. Retrying a completed payment is rejected.
func (s *Service) RetryPayment(ctx context.Context, orderID int, input RetryInput) (orders.Order, error) {
	paidAt := s.now()
	return s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		if o.PaymentStatus == enums.PaymentStatusCompleted {
			return orders.Order{}, pkgerrors.New(pkgerrors.CodePaymentAlreadyCompleted, "payment already completed")
		}
		if input.PaymentMethod != nil {
			o.PaymentMethod = *input.PaymentMethod
		}
		if input.PaymentResult != nil {
			o.PaymentResult = input.PaymentResult
			if o.TransactionID == "" {
				o.TransactionID = input.PaymentResult.TransactionID
			}
		}
		if input.TransactionID != "" {
			o.TransactionID = input.TransactionID
		}
		o.PaymentRetries++
		o.PaymentStatus = enums.PaymentStatusCompleted
		o.PaidAt = &paidAt
		return o, nil
	})
}

// ProcessRefund records a refund request against the order. The amount is
// deliberately not capped at the order total; finance adjusts manually.
func (s *Service) ProcessRefund(ctx context.Context, orderID int, amount decimal.Decimal, reason string) (orders.Order, error) {
	requestedAt := s.now()
	return s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		o.Refund = &orders.Refund{
			ID:          requestedAt.UnixMilli(),
			OrderID:     orderID,
			Amount:      amount,
			Reason:      reason,
			Status:      "requested",
			RequestedAt: requestedAt,
		}
		o.Status = enums.OrderStatusRefundRequested
		return o, nil
	})
}
