package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "2H2ZXGtjw1SsR5WEOV26pQoqEcHrGRGi"

func validConfig() *Config {
	cfg := SetDefaultConfig()
	cfg.Processor.APIKey = "test_key"
	cfg.Processor.APISecret = testSecret
	cfg.Merchant.WebsiteURL = "https://shop.example.com"
	cfg.Merchant.RedirectURL = "https://shop.example.com/thanks"
	cfg.Merchant.CancelURL = "https://shop.example.com/cancel"
	cfg.Merchant.WebhookURL = "https://shop.example.com/webhook"
	return cfg
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_KEY", "stg_key")
	t.Setenv("API_SECRET", testSecret)
	t.Setenv("WEBSITE_URL", "https://shop.example.com")
	t.Setenv("REDIRECT_URL", "https://shop.example.com/thanks")
	t.Setenv("CANCEL_URL", "https://shop.example.com/cancel")
	t.Setenv("WEBHOOK_URL", "https://shop.example.com/webhook")
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := NewValidator().Validate(validConfig()); err != nil {
		t.Errorf("Validate() returned unexpected error for valid config: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantKey string
	}{
		{"unknown env", func(c *Config) { c.Env = "dev" }, "ENV"},
		{"missing api key", func(c *Config) { c.Processor.APIKey = "" }, "API_KEY"},
		{"missing prod secret", func(c *Config) { c.Env = EnvProduction; c.Processor.APISecret = "" }, "API_SECRET_PROD"},
		{"short cipher secret", func(c *Config) { c.Processor.APISecret = "too-short" }, "API_SECRET"},
		{"unknown scheme", func(c *Config) { c.Processor.AuthScheme = "rsa" }, "AUTH_SCHEME"},
		{"relative base url", func(c *Config) { c.Processor.BaseURL = "/api" }, "ENDPOINT_BASE_URL"},
		{"zero timeout", func(c *Config) { c.Processor.Timeout = 0 }, "HTTP_TIMEOUT"},
		{"bad currency", func(c *Config) { c.Merchant.Currency = "usd" }, "CURRENCY"},
		{"non-positive minimum", func(c *Config) { c.Merchant.MinAmount = "0" }, "MIN_AMOUNT"},
		{"missing webhook url", func(c *Config) { c.Merchant.WebhookURL = "" }, "WEBHOOK_URL"},
		{"telegram without chat", func(c *Config) { c.Telegram.BotToken = "token" }, "TELEGRAM_CHAT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := NewValidator().Validate(cfg)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("ConfigurationError.Key = %s, want %s", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestValidate_SignatureSchemeAcceptsAnySecretLength(t *testing.T) {
	cfg := validConfig()
	cfg.Processor.AuthScheme = AuthSchemeSignature
	cfg.Processor.APISecret = "short"

	if err := NewValidator().Validate(cfg); err != nil {
		t.Errorf("Validate() returned unexpected error: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("MIN_AMOUNT", "2.50")
	t.Setenv("PRODUCT_ID", "prod-42")

	cfg, err := Load(t.TempDir(), context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Env != EnvStaging {
		t.Errorf("Load() Env = %s, want %s", cfg.Env, EnvStaging)
	}
	if cfg.Processor.APIKey != "stg_key" {
		t.Errorf("Load() APIKey = %s, want stg_key", cfg.Processor.APIKey)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Load() Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Processor.Timeout != 5*time.Second {
		t.Errorf("Load() Timeout = %v, want 5s", cfg.Processor.Timeout)
	}
	if cfg.Merchant.MinAmount != "2.50" {
		t.Errorf("Load() MinAmount = %s, want 2.50", cfg.Merchant.MinAmount)
	}
	if cfg.Merchant.ProductID != "prod-42" {
		t.Errorf("Load() ProductID = %s, want prod-42", cfg.Merchant.ProductID)
	}
	if cfg.Merchant.Currency != "USD" {
		t.Errorf("Load() Currency = %s, want default USD", cfg.Merchant.Currency)
	}
}

func TestLoad_ProductionCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "prod")
	t.Setenv("API_KEY_PROD", "live_key")
	t.Setenv("API_SECRET_PROD", strings.Repeat("s", CipherKeySize))

	cfg, err := Load(t.TempDir(), context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Processor.APIKey != "live_key" {
		t.Errorf("Load() APIKey = %s, want live_key", cfg.Processor.APIKey)
	}
	if cfg.Processor.APISecret != strings.Repeat("s", CipherKeySize) {
		t.Errorf("Load() did not pick API_SECRET_PROD")
	}
	if got, want := cfg.CheckoutURL(), "https://api.maxelpay.com/v1/prod/merchant/order/checkout"; got != want {
		t.Errorf("CheckoutURL() = %s, want %s", got, want)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"API_KEY=file_key",
		"API_SECRET=" + testSecret,
		"WEBSITE_URL=https://shop.example.com",
		"REDIRECT_URL=https://shop.example.com/thanks",
		"CANCEL_URL=https://shop.example.com/cancel",
		"WEBHOOK_URL=https://shop.example.com/webhook",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv writes into the process environment; register cleanup for each key.
	for _, key := range []string{"API_KEY", "API_SECRET", "WEBSITE_URL", "REDIRECT_URL", "CANCEL_URL", "WEBHOOK_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(dir, context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Processor.APIKey != "file_key" {
		t.Errorf("Load() APIKey = %s, want file_key", cfg.Processor.APIKey)
	}
}

func TestLoad_MissingCredentialsIsFatal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_SECRET", "")

	_, err := Load(t.TempDir(), context.Background())
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *ConfigurationError", err)
	}
}
