package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("optimistic", OutcomeBooked)
	m.ObserveLockWait("owner", time.Millisecond)
	m.ObserveSlots(3)
	m.ObserveRuleWrite("create", "created")

	var h *HTTPMetrics
	h.ObserveRequest("GET", 200, time.Millisecond)

	var e *EventMetrics
	e.ObservePublish("topic", nil)
}

func TestBookingMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("optimistic", OutcomeBooked)
	m.ObserveBooking("optimistic", OutcomeBooked)
	m.ObserveBooking("optimistic", OutcomeSlotTaken)
	m.ObserveLockWait("idempotency", 2*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("optimistic", OutcomeBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("optimistic", OutcomeSlotTaken)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "calendar_booking_requests_total")
	assert.Contains(t, names, "calendar_booking_lock_wait_seconds")
}

func TestHTTPMetrics_StatusClasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("POST", 201, time.Millisecond)
	m.ObserveRequest("POST", 409, time.Millisecond)
	m.ObserveRequest("POST", 503, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "5xx")))
}

func TestEventMetrics_Results(t *testing.T) {
	m := NewEventMetrics(prometheus.NewRegistry())

	m.ObservePublish("appointments.booked", nil)
	m.ObservePublish("appointments.booked", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishedTotal.WithLabelValues("appointments.booked", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishedTotal.WithLabelValues("appointments.booked", "error")))
}
