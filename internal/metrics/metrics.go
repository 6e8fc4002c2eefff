package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Booking
	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Booking attempts by outcome (error kind or ok).",
		},
		[]string{"result"},
	)
	cancellations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_cancellations_total",
			Help: "Cancellation attempts by outcome (error kind or ok).",
		},
		[]string{"result"},
	)
	seatsAdjusted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_inventory_adjusted_total",
			Help: "Seats taken from or returned to flight inventory.",
		},
		[]string{"direction"},
	)
	codeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_code_collisions_total",
			Help: "Generated reservation codes that already existed.",
		},
	)

	// Cache and events
	searchCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flight_search_cache_total",
			Help: "Flight search cache lookups by outcome (hit, miss, error).",
		},
		[]string{"outcome"},
	)
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_events_published_total",
			Help: "Booking events handed to Kafka by outcome.",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			bookings,
			cancellations,
			seatsAdjusted,
			codeCollisions,

			searchCache,
			eventsPublished,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// --- HTTP ---
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Booking ---
func ObserveBooking(result string)      { bookings.WithLabelValues(result).Inc() }
func ObserveCancellation(result string) { cancellations.WithLabelValues(result).Inc() }
func IncCodeCollision()                 { codeCollisions.Inc() }

func SeatsAdjusted(delta int) {
	switch {
	case delta < 0:
		seatsAdjusted.WithLabelValues("reserved").Add(float64(-delta))
	case delta > 0:
		seatsAdjusted.WithLabelValues("released").Add(float64(delta))
	}
}

// --- Cache and events ---
func ObserveSearchCache(outcome string) { searchCache.WithLabelValues(outcome).Inc() }
func ObserveEventPublish(outcome string) { eventsPublished.WithLabelValues(outcome).Inc() }
