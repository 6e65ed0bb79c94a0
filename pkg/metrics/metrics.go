package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "calendar"

// Booking outcomes.
const (
	OutcomeBooked      = "booked"
	OutcomeReplayed    = "replayed"
	OutcomeSlotTaken   = "slot_taken"
	OutcomeRejected    = "rejected"
	OutcomeLockTimeout = "lock_timeout"
	OutcomeError       = "error"
)

// BookingMetrics exposes counters/histograms for the booking engine.
type BookingMetrics struct {
	bookingsTotal  *prometheus.CounterVec
	lockWait       *prometheus.HistogramVec
	slotsGenerated prometheus.Histogram
	rulesWritten   *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a keyed lock",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"lock"}),
		slotsGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "slots_returned",
			Help:      "Number of free slots returned per query",
			Buckets:   prometheus.LinearBuckets(0, 4, 8),
		}),
		rulesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "rule_writes_total",
			Help:      "Availability rule writes by operation and result",
		}, []string{"operation", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.lockWait, m.slotsGenerated, m.rulesWritten)
	return m
}

func (m *BookingMetrics) ObserveBooking(strategy, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *BookingMetrics) ObserveLockWait(lock string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(lock).Observe(d.Seconds())
}

func (m *BookingMetrics) ObserveSlots(n int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Observe(float64(n))
}

func (m *BookingMetrics) ObserveRuleWrite(operation, result string) {
	if m == nil {
		return
	}
	m.rulesWritten.WithLabelValues(operation, result).Inc()
}

// HTTPMetrics tracks request counts and latency.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// EventMetrics counts published domain events.
type EventMetrics struct {
	publishedTotal *prometheus.CounterVec
}

func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	m := &EventMetrics{
		publishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events handed to the broker by topic and result",
		}, []string{"topic", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.publishedTotal)
	return m
}

func (m *EventMetrics) ObservePublish(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.publishedTotal.WithLabelValues(topic, result).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
