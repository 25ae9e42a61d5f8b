package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sahulatbazaar/sahulat-backend/api/routes"
	"github.com/sahulatbazaar/sahulat-backend/internal/delivery"
	"github.com/sahulatbazaar/sahulat-backend/internal/fulfillment"
	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/payments"
	"github.com/sahulatbazaar/sahulat-backend/internal/reporting"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	initialBalance, err := decimal.NewFromString(cfg.Wallet.InitialBalance)
	if err != nil {
		logg.Error(context.Background(), "invalid wallet initial balance", err)
		os.Exit(1)
	}
	gateway := wallet.NewClient(wallet.ClientOptions{
		InitialBalance: initialBalance,
		Latency:        cfg.Wallet.Latency,
	})

	store := orders.NewStore()
	store.Seed(orders.Fixture())

	orderService, err := orders.NewService(store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(payments.ServiceParams{
		Orders:  orderService,
		Gateway: gateway,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}
	fulfillmentService, err := fulfillment.NewService(fulfillment.ServiceParams{
		Orders: orderService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}
	deliveryService, err := delivery.NewService(delivery.ServiceParams{
		Orders: orderService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}
	reportingService, err := reporting.NewService(reporting.ServiceParams{
		Orders:  orderService,
		Gateway: gateway,
		Logger:  logg,
		Config:  cfg.Reports,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}
	defer reportingService.StopAll()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			gateway,
			orderService,
			paymentService,
			fulfillmentService,
			deliveryService,
			reportingService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
