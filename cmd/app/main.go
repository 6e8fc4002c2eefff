package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightapp/config"
	"github.com/Domenick1991/flightapp/internal/bootstrap"
	"github.com/Domenick1991/flightapp/internal/cache"
	"github.com/Domenick1991/flightapp/internal/kafka"
	"github.com/Domenick1991/flightapp/internal/logger"
	"github.com/Domenick1991/flightapp/internal/metrics"
	"github.com/Domenick1991/flightapp/internal/pnr"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/Domenick1991/flightapp/internal/repository/memory"
	"github.com/Domenick1991/flightapp/internal/service/airlines"
	"github.com/Domenick1991/flightapp/internal/service/booking"
	"github.com/Domenick1991/flightapp/internal/service/flights"
	"github.com/Domenick1991/flightapp/internal/service/inventory"
	"github.com/Domenick1991/flightapp/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatalf("load time zone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]bootstrap.HealthCheck)

	var store repository.Transactor
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on exit")
		store = memory.NewStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				log.Fatalf("migrate: %v", err)
			}
			log.Info("database schema applied")
		}
		checks["database"] = pool.Ping
		store = repository.NewPGTransactor(pool)
	}

	validate := validator.New()
	flightOpts := []flights.FlightServiceOption{flights.WithLocation(loc)}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithMaxPassengers(cfg.Booking.MaxPassengers),
		booking.WithCodeAttempts(cfg.Booking.CodeAttempts),
		booking.WithCancellationWindow(cfg.Booking.CancellationWindow()),
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cache.NewClient(cfg.Redis), cfg.Booking.SearchCacheTTL())
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, cache calls will fail soft")
		}
		checks["redis"] = redisCache.Ping
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()

		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka unreachable, booking events will be dropped")
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic, cfg.Kafka.PublishRetries),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	airlineService := airlines.NewAirlineService(store.Airlines(), validate, log)
	flightService := flights.NewFlightService(store, validate, log, flightOpts...)
	bookingService := booking.NewBookingService(
		store,
		inventory.NewManager(store, log),
		pnr.NewGenerator(pnr.WithClock(func() time.Time { return time.Now().In(loc) })),
		validate,
		log,
		bookingOpts...,
	)

	router := bootstrap.NewRouter(log, bootstrap.Services{
		Airlines: airlineService,
		Flights:  flightService,
		Bookings: bookingService,
		Location: loc,
		Checks:   checks,
	})

	if err := bootstrap.Run(ctx, cfg.HTTP, log, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
