package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	"github.com/VladKovDev/checkout-bridge/internal/delivery/http/handler"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
	"github.com/VladKovDev/checkout-bridge/internal/infrastructure/telegram"
	"github.com/VladKovDev/checkout-bridge/internal/server"
	"github.com/VladKovDev/checkout-bridge/internal/services/auth"
	"github.com/VladKovDev/checkout-bridge/internal/services/checkout"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"go.uber.org/zap"
)

// ConfigPathEnv names the variable holding the directory with config.yaml and .env.
const ConfigPathEnv = "CHECKOUT_BRIDGE_CONFIG_PATH"

// App holds high-level application dependencies.
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Checkout *checkout.Service
	Notifier handler.Notifier
}

// NewApp builds the checkout pipeline from a validated config.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	authenticator, err := auth.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init authenticator: %w", err)
	}

	client := checkout.NewClient(cfg.Processor.Timeout, log.Named("processor"))

	service, err := checkout.NewService(cfg, authenticator, client, domainOrder.SystemClock, log.Named("checkout"))
	if err != nil {
		return nil, fmt.Errorf("failed to init checkout service: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		Checkout: service,
		Notifier: telegram.Noop{},
	}, nil
}

// Handler returns the HTTP surface of the app.
func (a *App) Handler() (http.Handler, error) {
	checkoutHandler, err := handler.NewCheckoutHandler(a.Checkout, a.Config.Merchant.SiteName, a.Config.Merchant.Currency, a.Logger.Named("http"))
	if err != nil {
		return nil, err
	}
	webhookHandler := handler.NewWebhookHandler(a.Config.Webhook.Secret, a.Notifier, a.Logger.Named("webhook"))

	return handler.NewRouter(checkoutHandler, webhookHandler, a.Logger), nil
}

// Run loads the config and serves the checkout form and webhook until ctx is
// canceled or a shutdown signal arrives.
func Run(ctx context.Context, configPath string) error {
	cfg, log, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}

	notifier, err := initNotifier(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init notifier: %w", err)
	}
	app.Notifier = notifier

	router, err := app.Handler()
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	log.Info("checkout bridge starting",
		zap.String("env", cfg.Env),
		zap.String("scheme", cfg.Processor.AuthScheme),
		zap.String("endpoint", cfg.CheckoutURL()),
		zap.Bool("webhook_signed", cfg.Webhook.Secret != ""))

	ctx, cancel := withShutdownSignal(ctx, log)
	defer cancel()

	srv := server.New(cfg.Server, router, log.Named("server"))
	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// RunCheckout performs a single checkout and prints the outcome to out.
func RunCheckout(ctx context.Context, configPath string, req checkout.Request, out io.Writer) error {
	cfg, log, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}

	result, err := app.Checkout.Initiate(ctx, req)
	if err != nil {
		return err
	}

	if result.Kind == checkout.KindRedirect {
		fmt.Fprintf(out, "order %s: %s\n", result.OrderID, result.URL)
		return nil
	}
	return fmt.Errorf("order %s declined: %s", result.OrderID, result.Message)
}

// ConfigPathFromEnv returns the config directory set in the environment, or "".
func ConfigPathFromEnv() string {
	return os.Getenv(ConfigPathEnv)
}

func bootstrap(ctx context.Context, configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := initConfig(configPath, ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	log.Debug("logger debug enabled...")

	return cfg, log, nil
}

func initConfig(configPath string, ctx context.Context) (*config.Config, error) {
	return config.Load(configPath, ctx)
}

func initLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(cfg.Logger)
}

func initNotifier(cfg *config.Config, log logger.Logger) (handler.Notifier, error) {
	if cfg.Telegram.BotToken == "" {
		log.Debug("telegram notifier disabled")
		return telegram.Noop{}, nil
	}
	notifier, err := telegram.New(cfg.Telegram, log.Named("telegram"))
	if err != nil {
		return nil, err
	}
	return notifier, nil
}
