package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

// OrderMutator is the order surface delivery updates flow through.
type OrderMutator interface {
	Mutate(ctx context.Context, id int, fn func(orders.Order) (orders.Order, error)) (orders.Order, error)
}

// Service mirrors courier-side delivery progress onto the order record.
type Service struct {
	orders OrderMutator
	logg   *logger.Logger
	now    func() time.Time
}

type ServiceParams struct {
	Orders  OrderMutator
	Logger  *logger.Logger
	NowFunc func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order mutator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.NowFunc
	if now == nil {
		now = time.Now
	}
	return &Service{orders: params.Orders, logg: params.Logger, now: now}, nil
}

// statusByDelivery projects courier progress onto the customer-visible
// order status. A failed delivery cancels the order.
var statusByDelivery = map[enums.DeliveryStatus]enums.OrderStatus{
	enums.DeliveryStatusPending:   enums.OrderStatusPending,
	enums.DeliveryStatusAssigned:  enums.OrderStatusConfirmed,
	enums.DeliveryStatusPickedUp:  enums.OrderStatusPacked,
	enums.DeliveryStatusInTransit: enums.OrderStatusShipped,
	enums.DeliveryStatusDelivered: enums.OrderStatusDelivered,
	enums.DeliveryStatusFailed:    enums.OrderStatusCancelled,
}

// UpdateStatus records the courier's delivery status and the projected
// order status. A delivered update stamps the actual delivery time.
func (s *Service) UpdateStatus(ctx context.Context, orderID int, status enums.DeliveryStatus) (orders.Order, error) {
	projected, ok := statusByDelivery[status]
	if !ok {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid delivery status %q", status))
	}

	deliveredAt := s.now()
	updated, err := s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		o.DeliveryStatus = status
		o.Status = projected
		if status == enums.DeliveryStatusDelivered {
			o.ActualDelivery = &deliveredAt
		}
		return o, nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID), "delivery_status", string(status))
	s.logg.Info(logCtx, "delivery status updated")
	return updated, nil
}
