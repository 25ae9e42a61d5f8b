package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
)

// OrderAccess is the order surface the fulfillment workflow drives.
type OrderAccess interface {
	List(ctx context.Context) ([]orders.Order, error)
	Mutate(ctx context.Context, id int, fn func(orders.Order) (orders.Order, error)) (orders.Order, error)
}

// Service walks orders through the vendor side of the lifecycle: stage
// progression, availability answers and the courier handover.
type Service struct {
	orders OrderAccess
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams configure the fulfillment service.
type ServiceParams struct {
	Orders  OrderAccess
	Logger  *logger.Logger
	NowFunc func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order access required")
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

// statusByStage is the stage to order-status projection. Every stage
// advance also moves the customer-visible status.
var statusByStage = map[enums.FulfillmentStage]enums.OrderStatus{
	enums.FulfillmentStageAvailabilityConfirmed: enums.OrderStatusConfirmed,
	enums.FulfillmentStagePacked:                enums.OrderStatusPacked,
	enums.FulfillmentStagePaymentProcessed:      enums.OrderStatusPaymentProcessed,
	enums.FulfillmentStageAdminPaid:             enums.OrderStatusReadyForDelivery,
	enums.FulfillmentStageHandedOver:            enums.OrderStatusShipped,
}

// deliveryRoster is the courier pool, keyed by city. Roster data is
// static until dispatch gets its own system.
var deliveryRoster = map[string]orders.DeliveryPersonnel{
	"Lahore":    {Name: "Imran Baig", Phone: "+92-300-1114455", ETA: "45 min", Vehicle: "bike"},
	"Karachi":   {Name: "Salman Qureshi", Phone: "+92-321-8873321", ETA: "60 min", Vehicle: "van"},
	"Islamabad": {Name: "Fahad Mirza", Phone: "+92-333-5529910", ETA: "40 min", Vehicle: "bike"},
}

const defaultRosterCity = "Lahore"

// UpdateStage advances the order to the given fulfillment stage and
// projects the matching order status. Entering the packed stage with no
// courier assigned picks one from the city roster.
func (s *Service) UpdateStage(ctx context.Context, orderID int, stage enums.FulfillmentStage) (orders.Order, error) {
	status, ok := statusByStage[stage]
	if !ok {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeInvalidFulfillmentStage,
			fmt.Sprintf("unknown fulfillment stage %q", stage))
	}

	updated, err := s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		o.FulfillmentStage = stage
		o.Status = status
		if stage == enums.FulfillmentStagePacked && o.AssignedDelivery == nil {
			courier := s.assignCourier(o)
			o.AssignedDelivery = &courier
			o.DeliveryStatus = enums.DeliveryStatusAssigned
		}
		return o, nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID), "stage", string(stage))
	s.logg.Info(logCtx, "fulfillment stage updated")
	return updated, nil
}

func (s *Service) assignCourier(o orders.Order) orders.DeliveryPersonnel {
	city := defaultRosterCity
	if o.DeliveryAddress != nil && o.DeliveryAddress.City != "" {
		if _, ok := deliveryRoster[o.DeliveryAddress.City]; ok {
			city = o.DeliveryAddress.City
		}
	}
	return deliveryRoster[city]
}

// AvailabilityInput is one vendor's answer for one line item.
type AvailabilityInput struct {
	ProductID int
	VendorID  int
	Available bool
	Notes     string
}

// UpdateVendorAvailability records or overwrites a vendor's availability
// answer. Answers accumulate per (product, vendor) pair.
func (s *Service) UpdateVendorAvailability(ctx context.Context, orderID int, input AvailabilityInput) (orders.Order, error) {
	return s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		if o.VendorAvailability == nil {
			o.VendorAvailability = make(map[string]orders.VendorAvailability)
		}
		o.VendorAvailability[orders.AvailabilityKey(input.ProductID, input.VendorID)] = orders.VendorAvailability{
			Available: input.Available,
			Notes:     input.Notes,
			Timestamp: s.now(),
			VendorID:  input.VendorID,
			ProductID: input.ProductID,
		}
		return o, nil
	})
}

// HandoverInput is the vendor's confirmation of physical transfer to the
// courier.
type HandoverInput struct {
	VendorID  int
	Signature string
	Notes     string
}

// ConfirmHandover records the vendor-to-courier transfer and moves the
// order to shipped. No stage precondition is enforced; the floor confirms
// handovers out of order often enough that rejecting them loses data.
func (s *Service) ConfirmHandover(ctx context.Context, orderID int, input HandoverInput) (orders.Order, error) {
	confirmedAt := s.now()
	updated, err := s.orders.Mutate(ctx, orderID, func(o orders.Order) (orders.Order, error) {
		o.Handover = &orders.Handover{
			Signature:   input.Signature,
			VendorID:    input.VendorID,
			Notes:       input.Notes,
			ConfirmedAt: confirmedAt,
		}
		o.FulfillmentStage = enums.FulfillmentStageHandedOver
		o.Status = enums.OrderStatusShipped
		o.DeliveryStatus = enums.DeliveryStatusPickedUp
		return o, nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "handover confirmed")
	return updated, nil
}

// VendorForProduct maps a product to its sourcing vendor. Placeholder
// routing until the vendor catalog service lands.
func VendorForProduct(productID int) int {
	return productID%3 + 1
}

// ListVendorOrders returns the orders containing at least one line item
// sourced from the given vendor.
func (s *Service) ListVendorOrders(ctx context.Context, vendorID int) ([]orders.Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]orders.Order, 0, len(all))
	for _, o := range all {
		for _, item := range o.Items {
			if VendorForProduct(item.ProductID) == vendorID {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}
