package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Config is read from the environment once at startup.
type Config struct {
	Addr     string     `env:"ZIRRMI_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	Auth         Auth
	Verification Verification
	Redis        Redis
}

// Auth configures the reference identity backend.
type Auth struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"zirrmi"`
	TokenTTL      time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"24h"`
}

// Verification configures the one-time code backend and resend cooldown.
type Verification struct {
	Cooldown time.Duration `env:"VERIFICATION_COOLDOWN" envDefault:"60s"`
	CodeTTL  time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"10m"`
}

// Redis is optional; codes stay in memory when URL is empty.
type Redis struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Verification.Cooldown < time.Second {
		return nil, fmt.Errorf("VERIFICATION_COOLDOWN must be at least 1s, got %s", cfg.Verification.Cooldown)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	return &cfg, nil
}

// UsesDevSigningKey reports whether the built-in development key is in use.
func (c *Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}
