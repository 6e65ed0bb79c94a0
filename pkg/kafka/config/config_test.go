package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{" localhost:9092 ", "broker-2:9092"})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092", "broker-2:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaProducerBatchTimeout, "50ms")
	t.Setenv(EnvKafkaProducerRequireAcks, "1")

	cfg, err := Load([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, 50*time.Millisecond, cfg.ProducerBatchTimeout)
	assert.Equal(t, 1, cfg.ProducerRequireAcks)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorContains(t, err, "At least one Kafka broker is required")

	_, err = Load([]string{"localhost:9092", " "})
	assert.ErrorContains(t, err, "Broker 1 cannot be empty")

	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")
	_, err = Load([]string{"localhost:9092"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. ProducerCompression")
	assert.Contains(t, err.Error(), "2. ProducerRequireAcks")
}
