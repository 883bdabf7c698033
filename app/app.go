package app

import (
	"errors"
	"sync"
	"time"

	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/db"
	"github.com/clickgate-io/clickgate/gateway"
	"github.com/clickgate-io/clickgate/ingest"
	"github.com/clickgate-io/clickgate/pkg/geoip"
	"github.com/clickgate-io/clickgate/pkg/log"
	"github.com/clickgate-io/clickgate/pkg/ratelimiter"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

type Application struct {
	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log     *zap.SugaredLogger
	db      *db.DB
	gateway *gateway.Gateway
	api     *ingest.API
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		cfg:  cfg,
		stop: make(chan struct{}),
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	logger, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	app.log = logger

	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}
	database, err := db.NewDB(sqlDB, logger)
	if err != nil {
		return err
	}
	app.db = database

	var limiter ratelimiter.RateLimiter
	switch cfg.Gateway.RateLimit.Type {
	case config.RateLimitTypeRedis:
		client := cfg.Redis.GetClient()
		limiter = ratelimiter.NewRedisLimiter(redis_rate.NewLimiter(client))
	default:
		limiter = ratelimiter.NewMemoryLimiter()
	}

	resolver := geoip.NewResolver(geoip.Options{
		Endpoint: cfg.Ingest.Geo.Endpoint,
		Timeout:  time.Duration(cfg.Ingest.Geo.LookupTimeout) * time.Millisecond,
	})

	service := ingest.NewService(ingest.ServiceOptions{
		Events:     database.Events,
		Resolver:   resolver,
		GeoTimeout: time.Duration(cfg.Ingest.Geo.Timeout) * time.Millisecond,
	})

	app.api = ingest.NewAPI(&cfg.Ingest, service, database)
	app.gateway = gateway.NewGateway(&cfg.Gateway, limiter)

	return nil
}

// Start starts the application
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	app.api.Start()
	app.gateway.Start()

	app.started = true
	app.log.Info("clickgate started")

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop sets off the graceful termination of the application
func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("shutting down")

	if err := app.gateway.Stop(); err != nil {
		app.log.Warnf("failed to stop gateway: %v", err)
	}
	if err := app.api.Stop(); err != nil {
		app.log.Warnf("failed to stop ingest API: %v", err)
	}
	if err := app.db.Close(); err != nil {
		app.log.Warnf("failed to close database: %v", err)
	}

	app.started = false
	close(app.stop)

	return nil
}
