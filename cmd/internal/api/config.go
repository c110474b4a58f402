package api

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB

// Config controls request decoding and per-client throttling of the API routes.
type Config struct {
	MaxBodyBytes int64 `env:"USERSVC_AUTH_MAX_BODY_BYTES" envDefault:"1048576"`

	// PasswordBase64 makes /signup and /signin base64-decode the password field.
	PasswordBase64 bool `env:"USERSVC_AUTH_PASSWORD_BASE64" envDefault:"false"`

	TrustProxy bool `env:"USERSVC_TRUST_PROXY" envDefault:"false"`

	RateLimitEnabled bool    `env:"USERSVC_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"USERSVC_RATE_LIMIT_RPS"     envDefault:"10"`
	RateLimitBurst   int     `env:"USERSVC_RATE_LIMIT_BURST"   envDefault:"20"`
}

// LoadConfigFromEnv loads API config from environment variables with safe defaults.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse api env: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 10
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 20
	}
	return c
}
