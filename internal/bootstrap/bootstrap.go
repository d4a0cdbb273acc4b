// Package bootstrap assembles the storefront from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Zhima-Mochi/garmentshop/internal/application/notification"
	"github.com/Zhima-Mochi/garmentshop/internal/application/storefront"
	"github.com/Zhima-Mochi/garmentshop/internal/config"
	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/id"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/mongostore"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/notify"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/password"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/rabbit"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/session"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/garmentshop/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/garmentshop/internal/presentation/worker"
)

// App is a fully wired storefront process.
type App struct {
	Config  config.Config
	Shop    *storefront.Storefront
	Bus     *outbox.Bus
	Handler http.Handler
	Tel     observability.Observability

	zap     *zap.Logger
	health  []func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

// Option adjusts how New builds an App.
type Option func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
}

// WithZapLogger replaces the process logger built from configuration.
func WithZapLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// New connects every configured backend. On error anything already opened
// is closed again.
func New(ctx context.Context, cfg config.Config, opts ...Option) (_ *App, err error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close(context.WithoutCancel(ctx))
		}
	}()

	base := bo.logger
	if base == nil {
		base, err = logging.NewLogger(logging.Options{
			Service: cfg.Service.Name,
			Env:     cfg.Service.Env,
			Level:   cfg.Service.LogLevel,
			File:    cfg.Service.LogFile,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: logger: %w", err)
		}
	}
	app.zap = base
	logger := zaplogger.New(base)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prometrics.New(reg, "", "")
	if err := metrics.Register(observability.Counters, observability.Histograms); err != nil {
		return nil, fmt.Errorf("bootstrap: metrics: %w", err)
	}

	if cfg.Otel.Enabled {
		shutdown, err := oteltrace.Init(ctx, oteltrace.Config{
			ServiceName: cfg.Service.Name,
			Environment: cfg.Service.Env,
			SampleRatio: cfg.Otel.SampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: tracing: %w", err)
		}
		app.closers = append(app.closers, shutdown)
	}

	tel := telemetry.New(telemetry.Parts{
		Tracer:  oteltrace.New(cfg.Service.Name),
		Logger:  logger,
		Metrics: metrics,
	})
	app.Tel = tel

	repos, err := app.openStore(ctx, logger)
	if err != nil {
		return nil, err
	}

	revocations, err := app.openRevocations(ctx, logger)
	if err != nil {
		return nil, err
	}
	tokens, err := session.NewManager(cfg.SessionSecret(), cfg.Service.Name, cfg.Session.TTL, revocations)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	app.Bus = outbox.NewBus(tel)
	publisher, err := app.openPublisher(logger)
	if err != nil {
		return nil, err
	}

	notification.NewWorker(notify.NewLogNotifier(logger), tel).
		Register(app.Bus, workerpresentation.EventMiddleware(tel))

	app.Shop = storefront.New(storefront.Deps{
		Repos:           repos,
		Hasher:          password.NewBcrypt(cfg.Session.BcryptCost),
		IDs:             id.NewUUIDGenerator(),
		Publisher:       publisher,
		Telemetry:       tel,
		RequireShipping: cfg.Shop.RequireShippingFields,
	})

	app.Handler = httppresentation.NewHandler(app.Shop, tokens, tel, httppresentation.Options{
		Health:  app.Health,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}).Router()
	return app, nil
}

func (a *App) openStore(ctx context.Context, logger observability.Logger) (storefront.Repositories, error) {
	switch a.Config.Store.Driver {
	case config.StoreMongo:
		store, err := mongostore.Connect(ctx, a.Config.Store.MongoURI, a.Config.Store.MongoDB)
		if err != nil {
			return storefront.Repositories{}, fmt.Errorf("bootstrap: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.health = append(a.health, store.Ping)
		if err := store.EnsureIndexes(ctx); err != nil {
			return storefront.Repositories{}, fmt.Errorf("bootstrap: %w", err)
		}
		logger.Info("store_ready", observability.F("driver", config.StoreMongo), observability.F("db", a.Config.Store.MongoDB))
		return storefront.Repositories{
			Users:    store.Users(),
			Garments: store.Garments(),
			Cart:     store.Cart(),
			Orders:   store.Orders(),
		}, nil
	default:
		logger.Info("store_ready", observability.F("driver", config.StoreMemory))
		return storefront.Repositories{
			Users:    memory.NewUserRepository(),
			Garments: memory.NewGarmentRepository(),
			Cart:     memory.NewCartRepository(),
			Orders:   memory.NewOrderRepository(),
		}, nil
	}
}

func (a *App) openRevocations(ctx context.Context, logger observability.Logger) (session.Revocations, error) {
	if a.Config.Session.RedisAddr == "" {
		return session.NewMemoryRevocations(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Config.Session.RedisAddr})
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("bootstrap: redis ping: %w", err)
	}
	a.health = append(a.health, func(ctx context.Context) error { return client.Ping(ctx).Err() })
	logger.Info("session_revocations_ready", observability.F("backend", "redis"))
	return session.NewRedisRevocations(client, a.Config.Service.Name+":revoked:"), nil
}

// openPublisher always feeds the in-process bus and, when RABBIT_URL is set,
// also forwards events to the broker.
func (a *App) openPublisher(logger observability.Logger) (domoutbox.Publisher, error) {
	if a.Config.Rabbit.URL == "" {
		return a.Bus, nil
	}
	conn, err := rabbit.Connect(a.Config.Rabbit.URL, a.Config.Rabbit.Exchange)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return conn.Close() })
	logger.Info("event_broker_ready", observability.F("exchange", a.Config.Rabbit.Exchange))
	return outbox.Multi(a.Bus, rabbit.NewPublisher(conn.Ch, a.Config.Rabbit.Exchange)), nil
}

// Health pings every remote backend.
func (a *App) Health(ctx context.Context) error {
	for _, check := range a.health {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Logger is the process logger behind the observability port.
func (a *App) Logger() *zap.Logger {
	if a.zap == nil {
		return zap.NewNop()
	}
	return a.zap
}

// Close releases backends in reverse order of opening and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Bus != nil {
		if err := a.Bus.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	return errors.Join(errs...)
}
