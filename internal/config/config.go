package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	PayGatewayAddress string
	PayAPIKey         string
	GatewayTimeout    time.Duration
	PaymentSweepSpec  string
	DeliverySweepSpec string
	PaymentGrace      time.Duration
	DeliveryWindow    time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultGatewayTimeout    = 10 * time.Second
	defaultPaymentSweepSpec  = "* * * * *"
	defaultDeliverySweepSpec = "0 1 * * *"
	defaultPaymentGrace      = 15 * time.Minute
	defaultDeliveryWindow    = 60 * time.Minute
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		PayGatewayAddress: getString(lookup, "PAY_GATEWAY_ADDRESS", ""),
		PayAPIKey:         getString(lookup, "PAY_API_KEY", ""),
		GatewayTimeout:    getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		PaymentSweepSpec:  getString(lookup, "PAYMENT_SWEEP_SPEC", defaultPaymentSweepSpec),
		DeliverySweepSpec: getString(lookup, "DELIVERY_SWEEP_SPEC", defaultDeliverySweepSpec),
		PaymentGrace:      getDuration(lookup, "PAYMENT_GRACE", defaultPaymentGrace),
		DeliveryWindow:    getDuration(lookup, "DELIVERY_WINDOW", defaultDeliveryWindow),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("ordercore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		gatewayTimeoutStr  = cfg.GatewayTimeout.String()
		paymentGraceStr    = cfg.PaymentGrace.String()
		deliveryWindowStr  = cfg.DeliveryWindow.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PayGatewayAddress, "p", cfg.PayGatewayAddress, "Payment gateway base URL")
	fs.StringVar(&cfg.PayAPIKey, "pay-api-key", cfg.PayAPIKey, "Pre-shared APIv3 key for callback decryption")
	fs.StringVar(&cfg.PaymentSweepSpec, "payment-sweep", cfg.PaymentSweepSpec, "Cron spec for the payment-timeout sweep")
	fs.StringVar(&cfg.DeliverySweepSpec, "delivery-sweep", cfg.DeliverySweepSpec, "Cron spec for the delivery-completion sweep")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment/refund gateway request timeout")
	fs.StringVar(&paymentGraceStr, "payment-grace", paymentGraceStr, "Grace period before unpaid orders are cancelled")
	fs.StringVar(&deliveryWindowStr, "delivery-window", deliveryWindowStr, "Window after which in-flight deliveries are completed")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}
	if cfg.PaymentGrace, err = time.ParseDuration(paymentGraceStr); err != nil {
		return nil, fmt.Errorf("invalid payment grace: %w", err)
	}
	if cfg.DeliveryWindow, err = time.ParseDuration(deliveryWindowStr); err != nil {
		return nil, fmt.Errorf("invalid delivery window: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if keyFile, ok := lookup("PAY_API_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read pay api key file: %w", err)
		}
		// Key files routinely end with a newline; the key itself never does.
		cfg.PayAPIKey = strings.TrimRight(string(content), " \t\r\n")
	}

	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}
	if cfg.PaymentGrace <= 0 {
		cfg.PaymentGrace = defaultPaymentGrace
	}
	if cfg.DeliveryWindow <= 0 {
		cfg.DeliveryWindow = defaultDeliveryWindow
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if cfg.PayGatewayAddress == "" {
		return nil, fmt.Errorf("payment gateway address must be provided")
	}
	if len(cfg.PayAPIKey) != 32 {
		return nil, fmt.Errorf("pay api key must be 32 bytes, got %d", len(cfg.PayAPIKey))
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
