package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightapp/api"
	"github.com/Domenick1991/flightapp/config"
	"github.com/Domenick1991/flightapp/internal/logger"
	"github.com/Domenick1991/flightapp/internal/metrics"
	"github.com/Domenick1991/flightapp/internal/service/airlines"
	"github.com/Domenick1991/flightapp/internal/service/booking"
	"github.com/Domenick1991/flightapp/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const BasePath = "/api/v1.0/flight"

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Airlines airlines.AirlineUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	// Location is the zone wall-clock times are rendered in.
	Location *time.Location
	Checks   map[string]HealthCheck
}

func NewRouter(log logrus.FieldLogger, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(log), metrics.Middleware())

	router.GET("/health", health(svc.Checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	group := router.Group(BasePath)
	api.NewAirlineHandler(svc.Airlines).Register(group)
	api.NewFlightHandler(svc.Flights, svc.Location).Register(group)
	api.NewBookingHandler(svc.Bookings, svc.Location).Register(group)
	return router
}

// Run serves handler until ctx is cancelled or the listener fails, then
// drains in-flight requests within the configured timeout.
func Run(ctx context.Context, cfg config.HTTPConfig, log logrus.FieldLogger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.Address).Info("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen http %s: %w", cfg.Address, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("http server stopped")
		return nil
	})
	return g.Wait()
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "UP", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status, code = "DOWN", http.StatusServiceUnavailable
				continue
			}
			results[name] = "UP"
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	}
}
