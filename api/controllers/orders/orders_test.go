package orders

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sahulatbazaar/sahulat-backend/internal/delivery"
	"github.com/sahulatbazaar/sahulat-backend/internal/fulfillment"
	internalorders "github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/payments"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
	"github.com/shopspring/decimal"
)

func newTestRouter(t *testing.T) (http.Handler, *internalorders.Store) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := internalorders.NewStore()
	orderSvc, err := internalorders.NewService(store, logg)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	gateway := wallet.NewClient(wallet.ClientOptions{InitialBalance: decimal.NewFromInt(100000)})
	paymentSvc, err := payments.NewService(payments.ServiceParams{Orders: orderSvc, Gateway: gateway, Logger: logg})
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}
	fulfillmentSvc, err := fulfillment.NewService(fulfillment.ServiceParams{Orders: orderSvc, Logger: logg})
	if err != nil {
		t.Fatalf("fulfillment service: %v", err)
	}
	deliverySvc, err := delivery.NewService(delivery.ServiceParams{Orders: orderSvc, Logger: logg})
	if err != nil {
		t.Fatalf("delivery service: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/orders", List(orderSvc, logg))
	r.Post("/orders", Create(paymentSvc, logg))
	r.Get("/orders/{id}", Detail(orderSvc, logg))
	r.Patch("/orders/{id}", Update(orderSvc, logg))
	r.Delete("/orders/{id}", Delete(orderSvc, logg))
	r.Post("/orders/{id}/verification", UpdateVerification(paymentSvc, logg))
	r.Put("/orders/{id}/stage", UpdateStage(fulfillmentSvc, logg))
	r.Put("/orders/{id}/delivery-status", UpdateDeliveryStatus(deliverySvc, logg))
	r.Post("/orders/{id}/refund", Refund(paymentSvc, logg))
	return r, store
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, rec.Body.String())
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

func TestCreateOrderEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/orders", `{
		"customer_name": "Ayesha Khan",
		"items": [{"product_id": 7, "price": "750", "quantity": 2}],
		"total": "1500",
		"payment_method": "cash",
		"delivery_address": {"city": "Lahore"}
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created internalorders.Order
	decodeData(t, rec, &created)
	if created.ID != 1 {
		t.Fatalf("expected id 1, got %d", created.ID)
	}
	if created.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("cash order must start pending, got %s", created.PaymentStatus)
	}
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/orders", `{"payment_method": "cash"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestCreateOrderEndpointMissingPaymentResult(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/orders", `{
		"customer_name": "Bilal Sheikh",
		"items": [{"product_id": 3, "price": "400", "quantity": 1}],
		"total": "400",
		"payment_method": "jazzcash"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "PAYMENT_RESULT_MISSING" {
		t.Fatalf("expected PAYMENT_RESULT_MISSING, got %s", code)
	}
}

func TestDetailEndpointNotFound(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/orders/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestDetailEndpointBadID(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/orders/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerificationEndpoint(t *testing.T) {
	handler, store := newTestRouter(t)
	store.Seed([]internalorders.Order{{
		ID:                 1,
		VerificationStatus: enums.VerificationStatusPending,
	}})

	rec := doJSON(t, handler, http.MethodPost, "/orders/1/verification", `{"decision": "rejected"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated internalorders.Order
	decodeData(t, rec, &updated)
	if updated.Status != enums.OrderStatusPaymentRejected {
		t.Fatalf("expected payment_rejected, got %s", updated.Status)
	}

	// Re-resolving a settled verification is a state conflict.
	rec = doJSON(t, handler, http.MethodPost, "/orders/1/verification", `{"decision": "verified"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "VERIFICATION_NOT_PENDING" {
		t.Fatalf("expected VERIFICATION_NOT_PENDING, got %s", code)
	}
}

func TestStageEndpoint(t *testing.T) {
	handler, store := newTestRouter(t)
	store.Seed([]internalorders.Order{{ID: 1, DeliveryAddress: &internalorders.Address{City: "Islamabad"}}})

	rec := doJSON(t, handler, http.MethodPut, "/orders/1/stage", `{"stage": "packed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated internalorders.Order
	decodeData(t, rec, &updated)
	if updated.Status != enums.OrderStatusPacked {
		t.Fatalf("expected packed, got %s", updated.Status)
	}
	if updated.AssignedDelivery == nil {
		t.Fatal("courier not auto-assigned")
	}

	rec = doJSON(t, handler, http.MethodPut, "/orders/1/stage", `{"stage": "gift_wrapped"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "INVALID_FULFILLMENT_STAGE" {
		t.Fatalf("expected INVALID_FULFILLMENT_STAGE, got %s", code)
	}
}

func TestDeliveryStatusEndpoint(t *testing.T) {
	handler, store := newTestRouter(t)
	store.Seed([]internalorders.Order{{ID: 1}})

	rec := doJSON(t, handler, http.MethodPut, "/orders/1/delivery-status", `{"delivery_status": "delivered"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated internalorders.Order
	decodeData(t, rec, &updated)
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
	if updated.ActualDelivery == nil {
		t.Fatal("ActualDelivery not stamped")
	}
}

func TestRefundEndpoint(t *testing.T) {
	handler, store := newTestRouter(t)
	store.Seed([]internalorders.Order{{ID: 1, Total: decimal.NewFromInt(1000)}})

	rec := doJSON(t, handler, http.MethodPost, "/orders/1/refund", `{"amount": "600", "reason": "damaged"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated internalorders.Order
	decodeData(t, rec, &updated)
	if updated.Refund == nil || updated.Refund.Reason != "damaged" {
		t.Fatal("refund not recorded")
	}
	if updated.Status != enums.OrderStatusRefundRequested {
		t.Fatalf("expected refund_requested, got %s", updated.Status)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	handler, store := newTestRouter(t)
	store.Seed([]internalorders.Order{{ID: 1}})

	rec := doJSON(t, handler, http.MethodDelete, "/orders/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/orders/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
