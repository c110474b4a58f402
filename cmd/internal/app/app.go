// Package app wires the usersvc runtime: config, logging, identity provider, profile store and HTTP routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"usersvc/cmd/identity"
	"usersvc/cmd/internal/api"
	"usersvc/cmd/internal/authflow"
	"usersvc/cmd/internal/profile"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the usersvc runtime: it owns the HTTP server and the backends behind it.
type App struct {
	cfg Config
	log Logger

	provider identity.Provider
	store    profile.Store
	dbPool   *pgxpool.Pool
	metrics  *Metrics

	handler http.Handler
}

// Option overrides a backend New would otherwise build from Config.
type Option func(*App)

// WithIdentityProvider uses p instead of the configured provider.
func WithIdentityProvider(p identity.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithProfileStore uses st instead of the configured profile store.
func WithProfileStore(st profile.Store) Option {
	return func(a *App) { a.store = st }
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &c
		return c, nil
	}

	if a.provider == nil {
		p, err := newProvider(cfg, loadAWS)
		if err != nil {
			return nil, err
		}
		a.provider = p
	}

	if a.store == nil {
		if err := a.openStore(ctx, loadAWS); err != nil {
			return nil, err
		}
	}

	if cfg.MetricsEnabled {
		a.metrics = NewMetrics()
	}

	auth, err := authflow.NewService(a.provider, authflow.WithLogger(log))
	if err != nil {
		a.closeBackends()
		return nil, err
	}
	profiles, err := profile.NewService(a.store, profile.WithLogger(log))
	if err != nil {
		a.closeBackends()
		return nil, err
	}

	apiCfg, err := api.LoadConfigFromEnv()
	if err != nil {
		a.closeBackends()
		return nil, err
	}
	var hopts []api.HandlerOption
	if a.metrics != nil {
		hopts = append(hopts, api.WithOutcomeObserver(a.metrics.ObserveOutcome))
	}
	h, err := api.NewHandler(log, auth, profiles, apiCfg, hopts...)
	if err != nil {
		a.closeBackends()
		return nil, err
	}

	mux := http.NewServeMux()
	registerHTTP(mux, log, a.dbPool, cfg.DBPingTimeout, a.metrics, h)

	a.handler = WithRequestID(WithRequestLogging(WithSecurityHeaders(a.metrics.Wrap(mux)), log))
	return a, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"identity_provider", a.cfg.IdentityProvider,
		"profile_store", a.cfg.ProfileStore,
		"metrics", a.metrics != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.closeBackends()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.closeBackends()
	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func newProvider(cfg Config, loadAWS func() (aws.Config, error)) (identity.Provider, error) {
	switch cfg.IdentityProvider {
	case ProviderCognito:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return identity.NewCognitoProvider(cip.NewFromConfig(awsCfg), identity.CognitoConfig{
			UserPoolID:   cfg.UserPoolID,
			ClientID:     cfg.UserPoolClientID,
			ClientSecret: cfg.UserPoolClientSecret,
		})
	default:
		return nil, fmt.Errorf("app: unknown identity provider %q", cfg.IdentityProvider)
	}
}

// openStore picks the profile store backend.
// Ownership model: the app owns the pool; store Close() is a no-op for pooled backends.
func (a *App) openStore(ctx context.Context, loadAWS func() (aws.Config, error)) error {
	switch a.cfg.ProfileStore {
	case StoreMemory:
		a.log.Info("profile.store.inmemory")
		a.store = profile.NewInMemoryStore()
		return nil

	case StoreDynamoDB:
		awsCfg, err := loadAWS()
		if err != nil {
			return err
		}
		st, err := profile.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), profile.WithTable(a.cfg.ProfileTable))
		if err != nil {
			return err
		}
		a.log.Info("profile.store.dynamodb", "table", a.cfg.ProfileTable)
		a.store = st
		return nil

	case StorePostgres:
		pool, err := openProfilePool(ctx, a.cfg)
		if err != nil {
			return err
		}
		st, err := profile.NewPostgresStore(pool, profile.WithSchema(a.cfg.DBSchema))
		if err != nil {
			pool.Close()
			return err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return err
		}
		a.log.Info("profile.store.postgres", "schema", a.cfg.DBSchema)
		a.store = st
		a.dbPool = pool
		return nil

	default:
		return fmt.Errorf("app: unknown profile store %q", a.cfg.ProfileStore)
	}
}

func (a *App) closeBackends() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error("profile.store.close.fail", "err", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}
