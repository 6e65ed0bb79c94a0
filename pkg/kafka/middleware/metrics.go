package kafka_middleware

import (
	"context"

	"calendar/pkg/kafka"
	"calendar/pkg/metrics"
)

// MetricsProducerMiddleware counts publish outcomes per topic.
func MetricsProducerMiddleware(m *metrics.EventMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.ObservePublish(msg.Topic, err)
		return err
	}
}
