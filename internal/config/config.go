package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvStaging    = "stg"
	EnvProduction = "prod"

	AuthSchemeCipher    = "cipher"
	AuthSchemeSignature = "signature"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Merchant  MerchantConfig  `mapstructure:"merchant"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ProcessorConfig holds the credentials and transport settings for the
// hosted-checkout API. APIKey and APISecret already reflect the selected
// environment once Load returns.
type ProcessorConfig struct {
	BaseURL    string        `mapstructure:"endpoint_base_url"`
	AuthScheme string        `mapstructure:"auth_scheme"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	Timeout    time.Duration `mapstructure:"http_timeout"`
}

type MerchantConfig struct {
	SiteName      string `mapstructure:"site_name"`
	Currency      string `mapstructure:"currency"`
	MinAmount     string `mapstructure:"min_amount"`
	WebsiteURL    string `mapstructure:"website_url"`
	RedirectURL   string `mapstructure:"redirect_url"`
	CancelURL     string `mapstructure:"cancel_url"`
	WebhookURL    string `mapstructure:"webhook_url"`
	ProductID     string `mapstructure:"product_id"`
	WalletAddress string `mapstructure:"wallet_address"`
}

type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type LoggerConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	Output       string `mapstructure:"output"`
	EnableColors bool   `mapstructure:"enable_colors"`
	FilePath     string `mapstructure:"file_path"`
	MaxSize      int    `mapstructure:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"`
	Compress     bool   `mapstructure:"compress"`
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// CheckoutURL returns the order checkout endpoint for the configured environment.
func (c *Config) CheckoutURL() string {
	base := strings.TrimRight(c.Processor.BaseURL, "/")
	return fmt.Sprintf("%s/v1/%s/merchant/order/checkout", base, c.Env)
}

type Loader interface {
	Load(ctx context.Context) (*Config, error)
}

type viperLoader struct {
	configPath string
	validator  Validator
}

func NewViperLoader(configPath string, validator Validator) Loader {
	if configPath == "" {
		configPath = "."
	}
	return &viperLoader{
		configPath: configPath,
		validator:  validator,
	}
}

func (l *viperLoader) Load(ctx context.Context) (*Config, error) {
	cfg := SetDefaultConfig()

	// .env only seeds the process environment; variables already set win.
	if err := godotenv.Load(filepath.Join(l.configPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.configPath)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	l.BindEnvVariables(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Env == EnvProduction {
		if key := v.GetString("processor.api_key_prod"); key != "" {
			cfg.Processor.APIKey = key
		}
		if secret := v.GetString("processor.api_secret_prod"); secret != "" {
			cfg.Processor.APISecret = secret
		}
	}

	if err := l.validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config failed validation: %w", err)
	}

	return cfg, nil
}

// BindEnvVariables maps the flat environment variable names used by
// deployments onto nested config keys.
func (l *viperLoader) BindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("env", "ENV")
	// Server
	_ = v.BindEnv("server.host", "HOST")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	// Processor
	_ = v.BindEnv("processor.endpoint_base_url", "ENDPOINT_BASE_URL")
	_ = v.BindEnv("processor.auth_scheme", "AUTH_SCHEME")
	_ = v.BindEnv("processor.api_key", "API_KEY")
	_ = v.BindEnv("processor.api_secret", "API_SECRET")
	_ = v.BindEnv("processor.api_key_prod", "API_KEY_PROD")
	_ = v.BindEnv("processor.api_secret_prod", "API_SECRET_PROD")
	_ = v.BindEnv("processor.http_timeout", "HTTP_TIMEOUT")
	// Merchant
	_ = v.BindEnv("merchant.site_name", "SITE_NAME")
	_ = v.BindEnv("merchant.currency", "CURRENCY")
	_ = v.BindEnv("merchant.min_amount", "MIN_AMOUNT")
	_ = v.BindEnv("merchant.website_url", "WEBSITE_URL")
	_ = v.BindEnv("merchant.redirect_url", "REDIRECT_URL")
	_ = v.BindEnv("merchant.cancel_url", "CANCEL_URL")
	_ = v.BindEnv("merchant.webhook_url", "WEBHOOK_URL")
	_ = v.BindEnv("merchant.product_id", "PRODUCT_ID")
	_ = v.BindEnv("merchant.wallet_address", "WALLET_ADDRESS")
	// Webhook
	_ = v.BindEnv("webhook.secret", "WEBHOOK_SECRET")
	// Telegram
	_ = v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	// Logger
	_ = v.BindEnv("logger.level", "LOGGER_LEVEL")
	_ = v.BindEnv("logger.format", "LOGGER_FORMAT")
	_ = v.BindEnv("logger.output", "LOGGER_OUTPUT")
	_ = v.BindEnv("logger.enable_colors", "LOGGER_ENABLE_COLORS")
	_ = v.BindEnv("logger.file_path", "LOGGER_FILE_PATH")
	_ = v.BindEnv("logger.max_size", "LOGGER_MAX_SIZE")
	_ = v.BindEnv("logger.max_backups", "LOGGER_MAX_BACKUPS")
	_ = v.BindEnv("logger.max_age", "LOGGER_MAX_AGE")
	_ = v.BindEnv("logger.compress", "LOGGER_COMPRESS")
}

func Load(configPath string, ctx context.Context) (*Config, error) {
	loader := NewViperLoader(configPath, NewValidator())
	return loader.Load(ctx)
}
