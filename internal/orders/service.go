package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Patch is a partial order update. Nil fields are left untouched; the
// VendorAvailability entries are merged in (append/overwrite, never
// delete), matching how availability answers accumulate.
type Patch struct {
	CustomerName       *string
	Items              *[]LineItem
	Total              *decimal.Decimal
	TotalAmount        *decimal.Decimal
	PaymentMethod      *enums.PaymentMethod
	PaymentStatus      *enums.PaymentStatus
	VerificationStatus *enums.VerificationStatus
	ApprovalStatus     *enums.ApprovalStatus
	Status             *enums.OrderStatus
	FulfillmentStage   *enums.FulfillmentStage
	DeliveryStatus     *enums.DeliveryStatus
	TransactionID      *string
	PaymentResult      *PaymentResult
	PaymentProof       *PaymentProof
	Refund             *Refund
	AssignedDelivery   *DeliveryPersonnel
	DeliveryAddress    *Address
	ActualDelivery     *time.Time
	VendorAvailability map[string]VendorAvailability
}

func (p Patch) apply(o *Order) {
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.Items != nil {
		o.Items = *p.Items
	}
	if p.Total != nil {
		o.Total = *p.Total
	}
	if p.TotalAmount != nil {
		o.TotalAmount = *p.TotalAmount
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.VerificationStatus != nil {
		o.VerificationStatus = *p.VerificationStatus
	}
	if p.ApprovalStatus != nil {
		o.ApprovalStatus = *p.ApprovalStatus
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.FulfillmentStage != nil {
		o.FulfillmentStage = *p.FulfillmentStage
	}
	if p.DeliveryStatus != nil {
		o.DeliveryStatus = *p.DeliveryStatus
	}
	if p.TransactionID != nil {
		o.TransactionID = *p.TransactionID
	}
	if p.PaymentResult != nil {
		o.PaymentResult = p.PaymentResult
	}
	if p.PaymentProof != nil {
		o.PaymentProof = p.PaymentProof
	}
	if p.Refund != nil {
		o.Refund = p.Refund
	}
	if p.AssignedDelivery != nil {
		o.AssignedDelivery = p.AssignedDelivery
	}
	if p.DeliveryAddress != nil {
		o.DeliveryAddress = p.DeliveryAddress
	}
	if p.ActualDelivery != nil {
		o.ActualDelivery = p.ActualDelivery
	}
	if len(p.VendorAvailability) > 0 {
		if o.VendorAvailability == nil {
			o.VendorAvailability = make(map[string]VendorAvailability, len(p.VendorAvailability))
		}
		for k, v := range p.VendorAvailability {
			o.VendorAvailability[k] = v
		}
	}
}

// Service is the single surface through which order records are read and
// mutated. It serializes mutations per order id so that two business
// transactions racing on the same order observe read-snapshot,
// compute, replace atomicity.
type Service struct {
	store *Store
	logg  *logger.Logger

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

// NewService builds the order state machine over the given store.
func NewService(store *Store, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		store: store,
		logg:  logg,
		locks: make(map[int]*sync.Mutex),
	}, nil
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.List(), nil
}

// GetByID returns the order or a NOT_FOUND error.
func (s *Service) GetByID(ctx context.Context, id int) (Order, error) {
	return s.store.Get(id)
}

// Create validates the draft, reconciles the duplicated total fields and
// inserts it. The assigned id is max(existing)+1.
func (s *Service) Create(ctx context.Context, draft Order) (Order, error) {
	if draft.PaymentMethod != "" && !draft.PaymentMethod.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", draft.PaymentMethod))
	}
	if draft.Status == "" {
		draft.Status = enums.OrderStatusPending
	}
	if draft.DeliveryStatus == "" {
		draft.DeliveryStatus = enums.DeliveryStatusPending
	}
	reconcileTotals(&draft)
	created := s.store.Insert(draft)

	logCtx := s.logg.WithOrderID(ctx, created.ID)
	s.logg.Info(logCtx, "order created")
	return created, nil
}

// Update merges the patch over the current record and stores the result
// as a new snapshot. UpdatedAt strictly increases on every write.
func (s *Service) Update(ctx context.Context, id int, patch Patch) (Order, error) {
	return s.Mutate(ctx, id, func(o Order) (Order, error) {
		patch.apply(&o)
		reconcilePatchedTotals(&o, patch)
		return o, nil
	})
}

// Mutate runs fn on a snapshot of the order while holding the per-order
// lock, then replaces the stored record with fn's result. fn must not
// call back into the Service for the same order id.
func (s *Service) Mutate(ctx context.Context, id int, fn func(Order) (Order, error)) (Order, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.store.Get(id)
	if err != nil {
		return Order{}, err
	}
	next, err := fn(current)
	if err != nil {
		return Order{}, err
	}
	reconcileTotals(&next)
	return s.store.Replace(id, next)
}

// Delete removes the order.
func (s *Service) Delete(ctx context.Context, id int) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	logCtx := s.logg.WithOrderID(ctx, id)
	s.logg.Info(logCtx, "order deleted")
	return nil
}

func (s *Service) lockFor(id int) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// reconcileTotals keeps the duplicated Total/TotalAmount fields equal,
// preferring whichever is set when the other is zero.
func reconcileTotals(o *Order) {
	switch {
	case o.Total.IsZero() && !o.TotalAmount.IsZero():
		o.Total = o.TotalAmount
	default:
		o.TotalAmount = o.Total
	}
}

// reconcilePatchedTotals resolves an update that touched only one of the
// two duplicated fields: the touched one wins.
func reconcilePatchedTotals(o *Order, patch Patch) {
	if patch.Total != nil {
		o.TotalAmount = o.Total
		return
	}
	if patch.TotalAmount != nil {
		o.Total = o.TotalAmount
	}
}
