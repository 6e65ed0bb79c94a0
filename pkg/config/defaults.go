package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "calendar"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAppointmentDurationMin = 60
	DefaultBookingStrategy        = string(Optimistic)
	DefaultTimeValidator          = string(FullHour)

	DefaultIdempotencyTTL      = 10 * time.Minute
	DefaultIdempotencyCapacity = 10000
	DefaultLockTTL             = 5 * time.Minute
	DefaultLockCapacity        = 10000

	DefaultMaxRulesPerOwner = 30

	DefaultStoreBackend = string(MemoryBackend)

	DefaultKafkaTopic = "appointments.booked"

	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"

	DefaultPaginationLimit = 100
)
