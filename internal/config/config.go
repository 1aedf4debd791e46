package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"ACCOUNT_PORT" envDefault:"8081"`
	DatabaseURL string `env:"DB_DSN"`
	Environment string `env:"ACCOUNT_ENV" envDefault:"prod"`
	LogLevel    string `env:"ACCOUNT_LOG_LEVEL" envDefault:"info"`

	JWTSecret   string `env:"JWT_KEY"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	JWTAudience string `env:"JWT_AUDIENCE"`

	RateLimitPerMinute int `env:"ACCOUNT_RATE_LIMIT_PER_MIN" envDefault:"120"`
	RateLimitBurst     int `env:"ACCOUNT_RATE_LIMIT_BURST" envDefault:"30"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_KEY is required")
	}
	if cfg.JWTIssuer == "" {
		return Config{}, fmt.Errorf("JWT_ISSUER is required")
	}
	if cfg.JWTAudience == "" {
		return Config{}, fmt.Errorf("JWT_AUDIENCE is required")
	}
	return cfg, nil
}
