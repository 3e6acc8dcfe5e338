package api

import (
	"os"

	"github.com/redis/go-redis/v9"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/config"
	"just-landed/tracker/internal/db"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/providers"
	"just-landed/tracker/internal/push"
	"just-landed/tracker/internal/services"
)

type Repositories struct {
	Tracked   *repositories.TrackedFlightRepository
	Users     *repositories.UserRepository
	Members   *repositories.UserFlightRepository
	Alerts    *repositories.AlertRepository
	Reminders *repositories.ReminderRepository
	Airports  *repositories.AirportRepository
}

type Services struct {
	Cache      common.CacheInterface
	DelayQueue *common.RedisDelayQueue
	FlightData *services.FlightDataService
	Driving    *services.DrivingService
	Registry   *services.AlertRegistry
	Reminders  *services.ReminderService
	Tracking   *services.TrackingService
	Reconciler *services.AlertReconciler
	Push       push.Sender
	Source     providers.FlightSource
}

type Dependencies struct {
	Config      *config.Config
	RedisClient *redis.Client
	Repo        *Repositories
	Services    *Services
}

// InitDependencies wires the repository and service graph. Postgres and the
// GORM handle must already be connected (db.DB, db.PgDB).
func InitDependencies(cfg *config.Config) (*Dependencies, error) {
	repos := &Repositories{
		Tracked:   repositories.NewTrackedFlightRepository(),
		Users:     repositories.NewUserRepository(),
		Members:   repositories.NewUserFlightRepository(),
		Alerts:    repositories.NewAlertRepository(),
		Reminders: repositories.NewReminderRepository(),
		Airports:  repositories.NewAirportRepository(db.PgDB),
	}

	// Redis-backed cache in deployments that have one; in-process otherwise.
	var cacheSvc common.CacheInterface
	var redisClient *redis.Client
	if os.Getenv("REDIS_HOST") != "" {
		redisClient = common.NewRedisClient()
		cacheSvc = common.NewRedisCacheService(redisClient)
	} else {
		cacheSvc = common.NewCacheService(600, 1200)
	}

	var delayQueue *common.RedisDelayQueue
	if redisClient == nil {
		// The delay queue is Redis-only; workers need a client even when
		// the cache runs in process.
		redisClient = common.NewRedisClient()
	}
	delayQueue = common.NewRedisDelayQueue(redisClient)

	source := providers.NewFlightAwareClient(cfg)

	chain := providers.NewDrivingTimeChain(
		providers.NewGoogleDrivingSource(cfg.GoogleMapsKey),
		providers.NewBingDrivingSource(cfg.BingMapsKey),
	)

	publisher, err := push.NewPublisher(cfg.AMQPURL)
	if err != nil {
		return nil, err
	}

	flightData := services.NewFlightDataService(source, cacheSvc, repos.Airports)
	drivingSvc := services.NewDrivingService(chain, cacheSvc)
	registry := services.NewAlertRegistry(repos.Alerts, source)
	reminderSvc := services.NewReminderService(db.DB, repos.Reminders, repos.Tracked, repos.Members, publisher)
	tracking := services.NewTrackingService(
		db.DB, repos.Tracked, repos.Users, repos.Members,
		registry, reminderSvc, flightData, drivingSvc, publisher, delayQueue,
	)
	reconciler := services.NewAlertReconciler(
		db.DB, repos.Alerts, repos.Tracked, repos.Members,
		flightData, tracking, publisher,
	)

	svcs := &Services{
		Cache:      cacheSvc,
		DelayQueue: delayQueue,
		FlightData: flightData,
		Driving:    drivingSvc,
		Registry:   registry,
		Reminders:  reminderSvc,
		Tracking:   tracking,
		Reconciler: reconciler,
		Push:       publisher,
		Source:     source,
	}

	return &Dependencies{
		Config:      cfg,
		RedisClient: redisClient,
		Repo:        repos,
		Services:    svcs,
	}, nil
}
