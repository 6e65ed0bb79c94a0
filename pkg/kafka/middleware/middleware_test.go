package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"calendar/pkg/kafka"
	"calendar/pkg/logger"
	"calendar/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct{ err error }

func (w stubWriter) WriteMessages(context.Context, ...kafkago.Message) error { return w.err }
func (w stubWriter) Close() error                                            { return nil }

func TestProducerMiddlewareChain(t *testing.T) {
	reg := prometheus.NewRegistry()
	eventMetrics := metrics.NewEventMetrics(reg)

	failing := kafka.NewProducerWithWriter(stubWriter{err: errors.New("connection refused")}, "booked")
	failing.Use(LoggingProducerMiddleware(logger.Discard()))
	failing.Use(MetricsProducerMiddleware(eventMetrics))

	healthy := kafka.NewProducerWithWriter(stubWriter{}, "booked")
	healthy.Use(LoggingProducerMiddleware(logger.Discard()))
	healthy.Use(MetricsProducerMiddleware(eventMetrics))

	msg, err := kafka.NewMessage().WithKey("k").WithValue("v").Build()
	require.NoError(t, err)

	assert.Error(t, failing.Publish(context.Background(), msg))
	assert.NoError(t, healthy.Publish(context.Background(), msg))
	assert.NoError(t, healthy.Publish(context.Background(), msg))

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "calendar_events_published_total"))
}
