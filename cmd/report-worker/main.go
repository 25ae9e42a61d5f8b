package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/sahulatbazaar/sahulat-backend/internal/orders"
	"github.com/sahulatbazaar/sahulat-backend/internal/reporting"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/metrics"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "report-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "report-worker"

	logg = logger.New(logger.Options{
		ServiceName: "report-worker",
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

	reportMetrics := metrics.NewReportMetrics(prometheus.DefaultRegisterer)
	reportingService, err := reporting.NewService(reporting.ServiceParams{
		Orders:  orderService,
		Gateway: gateway,
		Logger:  logg,
		Metrics: reportMetrics,
		Config:  cfg.Reports,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting report worker")

	if err := reportingService.StartAutoRefresh(enums.ReportTypePaymentVerification, cfg.Reports.DefaultRefreshInterval); err != nil {
		logg.Error(ctx, "failed to start report auto-refresh", err)
		os.Exit(1)
	}

	<-ctx.Done()
	reportingService.StopAll()
	logg.Info(ctx, "report worker shutting down gracefully")
}
