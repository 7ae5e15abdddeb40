package config

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/shopspring/decimal"
)

// CipherKeySize is the AES-256 key length the cipher scheme requires of API_SECRET.
const CipherKeySize = 32

var currencyRegex = regexp.MustCompile(`^[A-Z]{3,5}$`)

// ConfigurationError reports a missing or malformed setting. It is fatal at
// startup and never surfaces per request.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Reason)
}

type Validator interface {
	Validate(cfg *Config) error
}

type validator struct{}

func NewValidator() Validator {
	return validator{}
}

func (validator) Validate(cfg *Config) error {
	if cfg.Env != EnvStaging && cfg.Env != EnvProduction {
		return &ConfigurationError{Key: "ENV", Reason: fmt.Sprintf("must be %q or %q, got %q", EnvStaging, EnvProduction, cfg.Env)}
	}
	if cfg.Server.Port == "" {
		return &ConfigurationError{Key: "PORT", Reason: "is required"}
	}

	if err := validateProcessor(cfg); err != nil {
		return err
	}
	if err := validateMerchant(&cfg.Merchant); err != nil {
		return err
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == 0 {
		return &ConfigurationError{Key: "TELEGRAM_CHAT_ID", Reason: "is required when TELEGRAM_BOT_TOKEN is set"}
	}
	return nil
}

func validateProcessor(cfg *Config) error {
	p := cfg.Processor
	keyVar, secretVar := "API_KEY", "API_SECRET"
	if cfg.Env == EnvProduction {
		keyVar, secretVar = "API_KEY_PROD", "API_SECRET_PROD"
	}

	if p.APIKey == "" {
		return &ConfigurationError{Key: keyVar, Reason: "is required"}
	}
	if p.APISecret == "" {
		return &ConfigurationError{Key: secretVar, Reason: "is required"}
	}
	if err := validateAbsoluteURL("ENDPOINT_BASE_URL", p.BaseURL); err != nil {
		return err
	}
	if p.Timeout <= 0 {
		return &ConfigurationError{Key: "HTTP_TIMEOUT", Reason: "must be positive"}
	}

	switch p.AuthScheme {
	case AuthSchemeCipher:
		if len([]byte(p.APISecret)) != CipherKeySize {
			return &ConfigurationError{
				Key:    secretVar,
				Reason: fmt.Sprintf("must be exactly %d bytes for the %s scheme, got %d", CipherKeySize, AuthSchemeCipher, len(p.APISecret)),
			}
		}
	case AuthSchemeSignature:
	default:
		return &ConfigurationError{Key: "AUTH_SCHEME", Reason: fmt.Sprintf("must be %q or %q, got %q", AuthSchemeCipher, AuthSchemeSignature, p.AuthScheme)}
	}
	return nil
}

func validateMerchant(m *MerchantConfig) error {
	if m.SiteName == "" {
		return &ConfigurationError{Key: "SITE_NAME", Reason: "is required"}
	}
	if !currencyRegex.MatchString(m.Currency) {
		return &ConfigurationError{Key: "CURRENCY", Reason: fmt.Sprintf("invalid currency code %q", m.Currency)}
	}

	minAmount, err := decimal.NewFromString(m.MinAmount)
	if err != nil {
		return &ConfigurationError{Key: "MIN_AMOUNT", Reason: fmt.Sprintf("not a decimal: %v", err)}
	}
	if !minAmount.IsPositive() {
		return &ConfigurationError{Key: "MIN_AMOUNT", Reason: "must be positive"}
	}

	urls := []struct {
		key, value string
	}{
		{"WEBSITE_URL", m.WebsiteURL},
		{"REDIRECT_URL", m.RedirectURL},
		{"CANCEL_URL", m.CancelURL},
		{"WEBHOOK_URL", m.WebhookURL},
	}
	for _, u := range urls {
		if err := validateAbsoluteURL(u.key, u.value); err != nil {
			return err
		}
	}
	return nil
}

func validateAbsoluteURL(key, raw string) error {
	if raw == "" {
		return &ConfigurationError{Key: key, Reason: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Key: key, Reason: "must be an absolute http(s) URL"}
	}
	return nil
}
