package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONNECTION_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAppointmentDurationMin = "APPOINTMENT_DURATION_MINUTES"
	EnvBookingStrategy        = "BOOKING_STRATEGY"
	EnvTimeValidator          = "TIME_VALIDATOR"

	EnvIdempotencyTTL      = "IDEMPOTENCY_TTL"
	EnvIdempotencyCapacity = "IDEMPOTENCY_CAPACITY"
	EnvLockTTL             = "LOCK_TTL"
	EnvLockCapacity        = "LOCK_CAPACITY"

	EnvMaxRulesPerOwner = "MAX_RULES_PER_OWNER"

	EnvStoreBackend = "STORE_BACKEND"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"

	EnvMetricsEnabled = "METRICS_ENABLED"
)
