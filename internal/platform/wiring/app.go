package wiring

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"

	adaptermiddleware "account-service/internal/adapters/http/middleware"
	"account-service/internal/application"
	"account-service/internal/config"
	"account-service/internal/infrastructure/amqp"
	"account-service/internal/infrastructure/auth"
	"account-service/internal/infrastructure/dynamodb"
	"account-service/internal/infrastructure/postgres"
	"account-service/internal/infrastructure/redis"
	httpiface "account-service/internal/interfaces/http"
	"account-service/internal/ports"
)

// App owns the process-wide clients: the store pool, the token registry
// connection and the broker channel. It is built once at start-up and every
// component receives what it needs from here.
type App struct {
	DB        *bun.DB
	Cache     ports.TokenCache
	Publisher ports.EventPublisher
	Echo      *echo.Echo

	closers []func() error
}

func Build(ctx context.Context, cfg config.Config, logger ports.Logger) (*App, error) {
	app := &App{}
	if err := app.connect(ctx, cfg, logger); err != nil {
		app.Close()
		return nil, err
	}

	codec, err := auth.NewJWTCodec(cfg.JWTSecret)
	if err != nil {
		app.Close()
		return nil, err
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	users := postgres.NewUserRepository(app.DB)
	apps := postgres.NewApplicationRepository(app.DB)
	grants := postgres.NewStaffGrantRepository(app.DB)
	keys := postgres.NewAPIKeyRepository(app.DB)

	events := application.NewUserEventHook(app.Publisher, logger)
	tokens := application.NewTokenManager(codec, app.Cache, logger, cfg.AccessTTL, cfg.RefreshTTL)
	authSvc := application.NewAuthService(users, hasher, tokens, events, logger)
	userSvc := application.NewUserService(users, hasher, events, logger)
	appSvc := application.NewApplicationService(apps, grants, users, logger)
	keySvc := application.NewKeyService(keys, apps, users, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := adaptermiddleware.NewMetrics(reg)
	guard := adaptermiddleware.NewGuard(tokens, appSvc, logger, metrics)

	app.Echo = httpiface.NewRouter(httpiface.Handlers{
		Auth:         httpiface.NewAuthHandler(authSvc),
		Users:        httpiface.NewUsersHandler(userSvc),
		Applications: httpiface.NewApplicationsHandler(appSvc),
		Keys:         httpiface.NewKeysHandler(keySvc),
	}, guard, httpiface.Middleware{
		XRay:          adaptermiddleware.XRayMiddleware("account-http"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
		Metrics:       metrics,
		AuthRateLimit: cfg.AuthRateLimit,
	}, logger)
	return app, nil
}

func (a *App) connect(ctx context.Context, cfg config.Config, logger ports.Logger) error {
	db, err := postgres.Open(cfg.DatabaseDSN, cfg.DBDebug)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	if cfg.CreateSchema {
		if err := postgres.CreateSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		logger.Info(ctx, "database schema ensured")
	}

	switch cfg.TokenStore {
	case config.StoreDynamoDB:
		client, err := dynamodb.NewClient(ctx, cfg.Region)
		if err != nil {
			return fmt.Errorf("failed to initialize dynamodb client: %w", err)
		}
		a.Cache = dynamodb.NewTokenCache(client, cfg.TableName)
	default:
		client, err := redis.NewClient(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.Cache = redis.NewTokenCache(client)
	}

	if cfg.AMQPURL == "" {
		logger.Warn(ctx, "AMQP_URL not set, user events are disabled")
		return nil
	}
	publisher, err := amqp.Dial(cfg.AMQPURL, cfg.UserEventQueue)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, publisher.Close)
	a.Publisher = publisher
	return nil
}

// Close releases the clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
