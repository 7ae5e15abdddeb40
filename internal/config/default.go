package config

import "time"

func SetDefaultConfig() *Config {
	return &Config{
		Env: EnvStaging,
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Processor: ProcessorConfig{
			BaseURL:    "https://api.maxelpay.com",
			AuthScheme: AuthSchemeCipher,
			Timeout:    15 * time.Second,
		},
		Merchant: MerchantConfig{
			SiteName:  "Checkout Bridge",
			Currency:  "USD",
			MinAmount: "1.00",
		},
		Logger: LoggerConfig{
			Level:        "info",
			Format:       "json",
			Output:       "stdout",
			EnableColors: false,
			FilePath:     "",
			MaxSize:      0,
			MaxBackups:   0,
			MaxAge:       0,
			Compress:     false,
		},
	}
}
