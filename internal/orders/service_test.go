package orders

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T) (*Service, *Store) {
	t.Helper()
	store := NewStore()
	svc, err := NewService(store, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestServiceCreateDefaultsAndTotals(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), Order{
		CustomerName:  "Ayesha Khan",
		PaymentMethod: enums.PaymentMethodCash,
		Total:         decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.OrderStatusPending {
		t.Fatalf("expected default status pending, got %s", created.Status)
	}
	if created.DeliveryStatus != enums.DeliveryStatusPending {
		t.Fatalf("expected default delivery status pending, got %s", created.DeliveryStatus)
	}
	if !created.TotalAmount.Equal(created.Total) {
		t.Fatalf("totals not reconciled: %s vs %s", created.Total, created.TotalAmount)
	}
}

func TestServiceCreateRejectsUnknownPaymentMethod(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), Order{PaymentMethod: "barter"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreateFillsTotalFromTotalAmount(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), Order{TotalAmount: decimal.NewFromInt(900)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.Total.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected total 900, got %s", created.Total)
	}
}

func TestServiceUpdateMergesPatch(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]Order{{
		ID:           1,
		CustomerName: "Ayesha Khan",
		Status:       enums.OrderStatusPending,
		Total:        decimal.NewFromInt(1500),
		VendorAvailability: map[string]VendorAvailability{
			"7_1": {Available: true, VendorID: 1, ProductID: 7},
		},
	}})

	status := enums.OrderStatusConfirmed
	updated, err := svc.Update(context.Background(), 1, Patch{
		Status: &status,
		VendorAvailability: map[string]VendorAvailability{
			"7_2": {Available: false, VendorID: 2, ProductID: 7},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status not applied: %s", updated.Status)
	}
	if updated.CustomerName != "Ayesha Khan" {
		t.Fatal("untouched field changed")
	}
	if len(updated.VendorAvailability) != 2 {
		t.Fatalf("availability entries must merge, got %d", len(updated.VendorAvailability))
	}
	if !updated.VendorAvailability["7_1"].Available {
		t.Fatal("prior availability entry lost")
	}
}

func TestServiceUpdatePatchedTotalWins(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]Order{{ID: 1, Total: decimal.NewFromInt(1000), TotalAmount: decimal.NewFromInt(1000)}})

	amount := decimal.NewFromInt(2500)
	updated, err := svc.Update(context.Background(), 1, Patch{TotalAmount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Total.Equal(amount) || !updated.TotalAmount.Equal(amount) {
		t.Fatalf("expected both totals 2500, got %s / %s", updated.Total, updated.TotalAmount)
	}
}

func TestServiceMutateSerializesPerOrder(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]Order{{ID: 1}})

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.Mutate(context.Background(), 1, func(o Order) (Order, error) {
				o.PaymentRetries++
				return o, nil
			})
		}()
	}
	wg.Wait()

	final, err := svc.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.PaymentRetries != writers {
		t.Fatalf("lost update: expected %d retries, got %d", writers, final.PaymentRetries)
	}
}

func TestServiceMutateErrorLeavesRecordUntouched(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]Order{{ID: 1, Status: enums.OrderStatusPending}})

	_, err := svc.Mutate(context.Background(), 1, func(o Order) (Order, error) {
		o.Status = enums.OrderStatusCancelled
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "nope")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	current, _ := svc.GetByID(context.Background(), 1)
	if current.Status != enums.OrderStatusPending {
		t.Fatalf("record changed despite mutation error: %s", current.Status)
	}
}

func TestServiceDeleteMissingIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Delete(context.Background(), 5); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
