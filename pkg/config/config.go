package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	Wallet  WalletConfig
	Reports ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SAHULAT_APP_ENV" default:"development"`
	Port         string `envconfig:"SAHULAT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SAHULAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAHULAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SAHULAT_SERVICE_KIND" default:"api"`
}

type WalletConfig struct {
	InitialBalance string        `envconfig:"SAHULAT_WALLET_INITIAL_BALANCE" default:"250000"`
	Latency        time.Duration `envconfig:"SAHULAT_WALLET_LATENCY" default:"50ms"`
}

type ReportsConfig struct {
	ExportHost             string        `envconfig:"SAHULAT_REPORTS_EXPORT_HOST" default:"storage.sahulat.pk"`
	ExportStepDelay        time.Duration `envconfig:"SAHULAT_REPORTS_EXPORT_STEP_DELAY" default:"400ms"`
	DefaultRefreshInterval time.Duration `envconfig:"SAHULAT_REPORTS_REFRESH_INTERVAL" default:"30s"`
	WalletTxLimit          int           `envconfig:"SAHULAT_REPORTS_WALLET_TX_LIMIT" default:"10"`
}
