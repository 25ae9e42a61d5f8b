package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sahulatbazaar/sahulat-backend/api/controllers"
	ordercontrollers "github.com/sahulatbazaar/sahulat-backend/api/controllers/orders"
	reportcontrollers "github.com/sahulatbazaar/sahulat-backend/api/controllers/reports"
	"github.com/sahulatbazaar/sahulat-backend/api/middleware"
	"github.com/sahulatbazaar/sahulat-backend/internal/delivery"
	"github.com/sahulatbazaar/sahulat-backend/internal/fulfillment"
	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/payments"
	"github.com/sahulatbazaar/sahulat-backend/internal/reporting"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gateway wallet.Service,
	orderService *orders.Service,
	paymentService *payments.Service,
	fulfillmentService *fulfillment.Service,
	deliveryService *delivery.Service,
	reportingService *reporting.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, gateway))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", ordercontrollers.List(orderService, logg))
		r.Post("/", ordercontrollers.Create(paymentService, logg))
		r.Get("/vendor", ordercontrollers.ListVendorOrders(fulfillmentService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ordercontrollers.Detail(orderService, logg))
			r.Patch("/", ordercontrollers.Update(orderService, logg))
			r.Delete("/", ordercontrollers.Delete(orderService, logg))

			r.Post("/verification", ordercontrollers.UpdateVerification(paymentService, logg))
			r.Post("/verify-payment", ordercontrollers.VerifyPayment(paymentService, logg))
			r.Post("/retry-payment", ordercontrollers.RetryPayment(paymentService, logg))
			r.Post("/refund", ordercontrollers.Refund(paymentService, logg))

			r.Put("/stage", ordercontrollers.UpdateStage(fulfillmentService, logg))
			r.Put("/availability", ordercontrollers.UpdateAvailability(fulfillmentService, logg))
			r.Post("/handover", ordercontrollers.ConfirmHandover(fulfillmentService, logg))
			r.Put("/delivery-status", ordercontrollers.UpdateDeliveryStatus(deliveryService, logg))
		})
	})

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/payment-verification", reportcontrollers.PaymentVerification(reportingService, logg))
		r.Post("/export", reportcontrollers.Export(reportingService, logg))
		r.Get("/exports", reportcontrollers.ExportJobs(reportingService, logg))
		r.Get("/exports/{jobID}", reportcontrollers.ExportJob(reportingService, logg))

		r.Route("/configs", func(r chi.Router) {
			r.Get("/", reportcontrollers.ListConfigs(reportingService, logg))
			r.Post("/", reportcontrollers.CreateConfig(reportingService, logg))
			r.Get("/{configID}", reportcontrollers.GetConfig(reportingService, logg))
			r.Patch("/{configID}", reportcontrollers.UpdateConfig(reportingService, logg))
			r.Delete("/{configID}", reportcontrollers.DeleteConfig(reportingService, logg))
		})
	})

	return r
}
