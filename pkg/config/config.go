package config

import (
	"calendar/pkg/client"
	"calendar/pkg/logger"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	AppointmentDurationMin int
	BookingStrategy        BookingStrategy
	TimeValidator          TimeValidator

	IdempotencyTTL      time.Duration
	IdempotencyCapacity int
	LockTTL             time.Duration
	LockCapacity        int

	MaxRulesPerOwner int

	StoreBackend StoreBackend

	KafkaBrokers []string
	KafkaTopic   string

	MetricsEnabled bool
	MetricsPath    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		AppointmentDurationMin: getEnvNum(EnvAppointmentDurationMin, DefaultAppointmentDurationMin),
		BookingStrategy:        BookingStrategy(strings.ToLower(getEnvStr(EnvBookingStrategy, DefaultBookingStrategy))),
		TimeValidator:          TimeValidator(strings.ToLower(getEnvStr(EnvTimeValidator, DefaultTimeValidator))),

		IdempotencyTTL:      getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		IdempotencyCapacity: getEnvNum(EnvIdempotencyCapacity, DefaultIdempotencyCapacity),
		LockTTL:             getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockCapacity:        getEnvNum(EnvLockCapacity, DefaultLockCapacity),

		MaxRulesPerOwner: getEnvNum(EnvMaxRulesPerOwner, DefaultMaxRulesPerOwner),

		StoreBackend: StoreBackend(strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend))),

		KafkaBrokers: getEnvList(EnvKafkaBrokers),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		MetricsEnabled: getEnvBool(EnvMetricsEnabled, DefaultMetricsEnabled),
		MetricsPath:    DefaultMetricsPath,

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Default returns a configuration built purely from defaults, with the given logger.
func Default(log *logger.Logger) *Config {
	return &Config{
		MongoURI:               DefaultMongoURI,
		MongoDatabaseName:      DefaultMongoDatabaseName,
		MongoConnTimeout:       DefaultMongoConnTimeout,
		Port:                   DefaultPort,
		LogLevel:               DefaultLogLevel,
		LogFormat:              DefaultLogFormat,
		RequestTimeout:         DefaultRequestTimeout,
		MaxRequestSize:         DefaultMaxRequestSize,
		ReadTimeout:            DefaultReadTimeout,
		WriteTimeout:           DefaultWriteTimeout,
		IdleTimeout:            DefaultIdleTimeout,
		ShutdownTimeout:        DefaultShutdownTimeout,
		AppointmentDurationMin: DefaultAppointmentDurationMin,
		BookingStrategy:        Optimistic,
		TimeValidator:          FullHour,
		IdempotencyTTL:         DefaultIdempotencyTTL,
		IdempotencyCapacity:    DefaultIdempotencyCapacity,
		LockTTL:                DefaultLockTTL,
		LockCapacity:           DefaultLockCapacity,
		MaxRulesPerOwner:       DefaultMaxRulesPerOwner,
		StoreBackend:           MemoryBackend,
		KafkaTopic:             DefaultKafkaTopic,
		MetricsEnabled:         DefaultMetricsEnabled,
		MetricsPath:            DefaultMetricsPath,
		Log:                    log,
		Client:                 client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) AppointmentDuration() time.Duration {
	return time.Duration(cfg.AppointmentDurationMin) * time.Minute
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case MemoryBackend:
	case MongoBackend:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [%s, %s], got: %s", MemoryBackend, MongoBackend, cfg.StoreBackend))
	}

	switch cfg.BookingStrategy {
	case Optimistic, Pessimistic:
	default:
		errors = append(errors, fmt.Sprintf("BookingStrategy must be one of [%s, %s], got: %s", Optimistic, Pessimistic, cfg.BookingStrategy))
	}

	switch cfg.TimeValidator {
	case FullHour, DurationGrid:
	default:
		errors = append(errors, fmt.Sprintf("TimeValidator must be one of [%s, %s], got: %s", FullHour, DurationGrid, cfg.TimeValidator))
	}

	if cfg.AppointmentDurationMin <= 0 || cfg.AppointmentDurationMin > 24*60 {
		errors = append(errors, fmt.Sprintf("AppointmentDurationMin must be between 1 and 1440, got: %d", cfg.AppointmentDurationMin))
	}
	if cfg.TimeValidator == FullHour && cfg.AppointmentDurationMin%60 != 0 {
		errors = append(errors, fmt.Sprintf("AppointmentDurationMin must be a whole number of hours for %s, got: %d", FullHour, cfg.AppointmentDurationMin))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.LockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.IdempotencyCapacity <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyCapacity must be positive, got: %d", cfg.IdempotencyCapacity))
	}
	if cfg.LockCapacity <= 0 {
		errors = append(errors, fmt.Sprintf("LockCapacity must be positive, got: %d", cfg.LockCapacity))
	}
	if cfg.MaxRulesPerOwner <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRulesPerOwner must be positive, got: %d", cfg.MaxRulesPerOwner))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		errors = append(errors, "KafkaTopic cannot be empty when KafkaBrokers are set")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_backend", cfg.StoreBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"appointment_duration_min", cfg.AppointmentDurationMin,
		"booking_strategy", cfg.BookingStrategy,
		"time_validator", cfg.TimeValidator,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"idempotency_capacity", cfg.IdempotencyCapacity,
		"lock_ttl", cfg.LockTTL,
		"lock_capacity", cfg.LockCapacity,
		"max_rules_per_owner", cfg.MaxRulesPerOwner,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"metrics_enabled", cfg.MetricsEnabled,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
