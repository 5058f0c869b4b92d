package api

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/db"
	"travel-desk/bookingcart/internal/db/repositories"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/middleware"
	"travel-desk/bookingcart/internal/services"
	"travel-desk/bookingcart/internal/workers"
)

var (
	_ services.ApplicationStore          = (*repositories.VisaApplicationRepository)(nil)
	_ services.ApplicationStore          = (*repositories.VisaApplicationRedisStore)(nil)
	_ services.FlightProvider            = (*common.DuffelAPIService)(nil)
	_ ApplicationManager                 = (*services.VisaApplicationService)(nil)
	_ services.ApplicationEventPublisher = (*common.RedisQueueService)(nil)
	_ workers.EventQueue                 = (*common.RedisQueueService)(nil)
)

type Services struct {
	Flights      *services.FlightsService
	Places       *services.PlacesService
	Visa         *services.VisaService
	Applications *services.VisaApplicationService
	Receipts     *services.ReceiptService
}

type Dependencies struct {
	Config      *config.Config
	Metrics     *metrics.MetricsRegistry
	Cache       common.CacheInterface
	Duffel      *common.DuffelAPIService
	Sessions    *common.AdminSessionSigner
	RateLimiter *middleware.RateLimiter
	Services    *Services
	Checks      map[string]HealthCheck
	// Queue is nil unless events.driver is "redis".
	Queue *common.RedisQueueService

	closers []func() error
}

func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Metrics:     metricsReg,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Checks:      map[string]HealthCheck{},
	}

	var redisClient *redis.Client
	getRedis := func() *redis.Client {
		if redisClient == nil {
			redisClient = common.NewRedisClient(cfg.Redis)
			deps.closers = append(deps.closers, redisClient.Close)
		}
		return redisClient
	}

	switch cfg.Cache.Driver {
	case "redis":
		deps.Cache = common.NewRedisCacheService(getRedis())
	case "memory":
		deps.Cache = common.NewCacheService(300, 600)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
	deps.Checks["cache"] = func(ctx context.Context) error { return deps.Cache.Ping() }

	store, err := openApplicationStore(cfg, deps, getRedis)
	if err != nil {
		return nil, err
	}

	dataset, err := common.LoadEmbeddedVisaDataset()
	if err != nil {
		return nil, fmt.Errorf("failed to load visa dataset: %w", err)
	}
	visaSvc := services.NewVisaService(services.NewVisaTable(dataset), metricsReg)

	deps.Duffel = common.NewDuffelAPIService(cfg.Duffel, metricsReg)
	if !deps.Duffel.Configured() {
		logging.Warn("DUFFEL_API_TOKEN not set; flight and airport search will answer 500")
	}

	deps.Sessions = common.NewAdminSessionSigner(cfg.Admin.Token, deps.Cache)
	if deps.Sessions == nil {
		logging.Warn("ADMIN_TOKEN not set; admin routes will answer 500")
	}

	applications := services.NewVisaApplicationService(store, visaSvc, metricsReg)
	switch cfg.Events.Driver {
	case "redis":
		deps.Queue = common.NewRedisQueueService(getRedis(), cfg.Events.Stream)
		applications.SetPublisher(deps.Queue)
		deps.Checks["events"] = func(ctx context.Context) error { return getRedis().Ping(ctx).Err() }
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}

	if applications.Available() {
		deps.Checks["storage"] = applications.Ping
	} else {
		deps.Checks["storage"] = nil
	}

	deps.Services = &Services{
		Flights:      services.NewFlightsService(deps.Duffel, deps.Cache, metricsReg, cfg.Flights),
		Places:       services.NewPlacesService(deps.Duffel, deps.Cache, metricsReg),
		Visa:         visaSvc,
		Applications: applications,
		Receipts:     services.NewReceiptService(cfg.Server.PublicBaseURL),
	}
	return deps, nil
}

// openApplicationStore returns a nil store for driver "none" or when the
// configured backend cannot be reached, which puts applications into
// local-fallback mode instead of failing startup.
func openApplicationStore(cfg *config.Config, deps *Dependencies, getRedis func() *redis.Client) (services.ApplicationStore, error) {
	switch cfg.Storage.Driver {
	case "none":
		logging.Warn("No application storage configured; clients will keep applications locally")
		return nil, nil
	case "redis":
		return repositories.NewVisaApplicationRedisStore(getRedis()), nil
	case "sqlite", "postgres":
		var (
			sqlStore *db.Store
			err      error
		)
		if cfg.Storage.Driver == "sqlite" {
			sqlStore, err = db.OpenSQLite(cfg.Storage.SQLitePath)
		} else {
			sqlStore, err = db.OpenPostgres(cfg.Database)
		}
		if err == nil {
			err = db.Migrate(sqlStore.ORM)
		}
		if err != nil {
			logging.Error("Application storage unavailable", "driver", cfg.Storage.Driver, "error", err)
			if sqlStore != nil {
				sqlStore.Close()
			}
			return nil, nil
		}
		deps.closers = append(deps.closers, sqlStore.Close)
		return repositories.NewVisaApplicationRepository(sqlStore.ORM, sqlStore.SQL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
