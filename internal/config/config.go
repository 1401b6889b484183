// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"characters-api/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string        `env:"SERVER_PORT" envDefault:"5000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	DB        db.Config
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTKey     string        `env:"JWT_KEY,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

// RateLimitConfig configures the per-IP limiter. It is off unless enabled explicitly.
type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *AppConfig) Validate() error {
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL: must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST: must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected %q or %q", c.DB.Driver, db.DriverPostgres, db.DriverSQLite)
	}
	return nil
}
