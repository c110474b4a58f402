package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Identity providers and profile stores selectable at startup.
const (
	ProviderCognito = "cognito"

	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string `env:"USERSVC_HTTP_ADDR"  envDefault:"0.0.0.0:8000"`
	LogLevel  string `env:"USERSVC_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"USERSVC_LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"USERSVC_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"USERSVC_HTTP_READ_TIMEOUT"        envDefault:"15s"`
	WriteTimeout      time.Duration `env:"USERSVC_HTTP_WRITE_TIMEOUT"       envDefault:"15s"`
	IdleTimeout       time.Duration `env:"USERSVC_HTTP_IDLE_TIMEOUT"        envDefault:"60s"`
	MaxHeaderBytes    int           `env:"USERSVC_HTTP_MAX_HEADER_BYTES"    envDefault:"1048576"`

	AWSRegion string `env:"USERSVC_AWS_REGION" envDefault:"ap-southeast-2"`

	IdentityProvider     string `env:"USERSVC_IDENTITY_PROVIDER" envDefault:"cognito"`
	UserPoolID           string `env:"AWS_USER_POOL_ID"`
	UserPoolClientID     string `env:"AWS_USER_POOL_CLIENT_ID"`
	UserPoolClientSecret string `env:"AWS_USER_POOL_CLIENT_SECRET"`

	ProfileStore string `env:"USERSVC_PROFILE_STORE" envDefault:"dynamodb"`
	ProfileTable string `env:"USERSVC_PROFILE_TABLE" envDefault:"UserProfile"`

	DatabaseURL string `env:"USERSVC_DATABASE_URL"`
	DBMaxConns  int32  `env:"USERSVC_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"USERSVC_DB_MIN_CONNS" envDefault:"0"`
	DBSchema    string `env:"USERSVC_DB_SCHEMA"    envDefault:"usersvc"`

	DBPingTimeout time.Duration `env:"USERSVC_DB_PING_TIMEOUT" envDefault:"3s"`

	MetricsEnabled bool `env:"USERSVC_METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.IdentityProvider = strings.ToLower(strings.TrimSpace(cfg.IdentityProvider))
	cfg.ProfileStore = strings.ToLower(strings.TrimSpace(cfg.ProfileStore))
	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}
	if cfg.DBMinConns < 0 {
		cfg.DBMinConns = 0
	}
	if cfg.DBPingTimeout <= 0 {
		cfg.DBPingTimeout = defaultDBPingTimeout
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the process cannot start with.
func (c Config) Validate() error {
	switch c.IdentityProvider {
	case ProviderCognito:
	default:
		return fmt.Errorf("config: unknown identity provider %q", c.IdentityProvider)
	}
	switch c.ProfileStore {
	case StoreDynamoDB, StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: USERSVC_DATABASE_URL is required for the postgres profile store")
		}
	default:
		return fmt.Errorf("config: unknown profile store %q", c.ProfileStore)
	}
	return nil
}
