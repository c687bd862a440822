package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics exposes Prometheus collectors for the HTTP surface and the booking
// workflow.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	bookingsTotal    prometheus.Counter
	bookingConflicts prometheus.Counter
	cancellations    prometheus.Counter
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Count of HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by path and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		bookingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_booked_total",
			Help: "Count of successfully booked tickets.",
		}),
		bookingConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "booking_seat_conflicts_total",
			Help: "Count of bookings rejected because the seat was taken.",
		}),
		cancellations: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_cancelled_total",
			Help: "Count of cancelled tickets.",
		}),
	}
}

// RecordRequest observes one completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordBooking counts a successful booking.
func (m *Metrics) RecordBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

// RecordSeatConflict counts a booking rejected by the uniqueness constraint.
func (m *Metrics) RecordSeatConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

// RecordCancellation counts a successful cancellation.
func (m *Metrics) RecordCancellation() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}

// Handler serves the registry in Prometheus exposition format, bridged onto
// Fiber's fasthttp transport.
func (m *Metrics) Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	)
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
