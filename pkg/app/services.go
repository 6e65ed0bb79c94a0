package app

import (
	"context"
	"fmt"

	"calendar/internal/appointments/events"
	apptshandler "calendar/internal/appointments/handler"
	"calendar/internal/appointments/idempotency"
	apptsrepo "calendar/internal/appointments/repository"
	apptsservice "calendar/internal/appointments/service"
	"calendar/internal/appointments/strategy"
	apptsvalidator "calendar/internal/appointments/validator"
	availhandler "calendar/internal/availability/handler"
	availrepo "calendar/internal/availability/repository"
	availservice "calendar/internal/availability/service"
	availvalidator "calendar/internal/availability/validator"
	"calendar/internal/locks"
	usershandler "calendar/internal/users/handler"
	usersrepo "calendar/internal/users/repository"
	usersservice "calendar/internal/users/service"
	usersvalidator "calendar/internal/users/validator"
	"calendar/pkg/config"
	"calendar/pkg/contracts"
	"calendar/pkg/kafka"
	kafka_config "calendar/pkg/kafka/config"
	kafkamiddleware "calendar/pkg/kafka/middleware"
	"calendar/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Services is the wired domain layer: the coordinators, their HTTP surfaces
// and the resources that must be closed on shutdown.
type Services struct {
	Users        usersservice.UserService
	Availability availservice.AvailabilityService
	Appointments apptsservice.AppointmentService

	handlers []contracts.Handler
	producer *kafka.Producer
}

func InitServices(cfg *config.Config, reg prometheus.Registerer) (*Services, error) {
	bookingMetrics := metrics.NewBookingMetrics(reg)

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}
	ruleStore, bookingStore := stores.rules, stores.bookings

	users := usersservice.NewUserService(
		stores.users,
		usersvalidator.NewUserValidator(cfg.Log),
		cfg,
	)

	availability := availservice.NewAvailabilityService(
		ruleStore,
		bookingStore,
		users,
		availvalidator.NewRulesValidator(cfg.Log, cfg.MaxRulesPerOwner),
		bookingMetrics,
		cfg,
	)

	// owner locks and idempotency-key locks live in separate tables
	strat, err := strategy.New(cfg.BookingStrategy, bookingStore, locks.NewCoordinator(cfg.LockTTL, cfg.LockCapacity), bookingMetrics)
	if err != nil {
		return nil, err
	}
	policy, err := apptsvalidator.NewTimePolicy(cfg.TimeValidator, cfg.AppointmentDuration())
	if err != nil {
		return nil, err
	}

	publisher, producer, err := initPublisher(cfg, reg)
	if err != nil {
		return nil, err
	}

	appointments := apptsservice.NewAppointmentService(
		bookingStore,
		strat,
		apptsvalidator.NewBookingValidator(cfg.Log, policy, users, ruleStore, cfg.AppointmentDuration()),
		idempotency.NewLedger(cfg.IdempotencyTTL, cfg.IdempotencyCapacity),
		locks.NewCoordinator(cfg.LockTTL, cfg.LockCapacity),
		users,
		publisher,
		bookingMetrics,
		cfg,
	)

	cfg.Log.Info("Calendar services initialized",
		"store_backend", cfg.StoreBackend,
		"booking_strategy", strat.Name(),
		"time_validator", cfg.TimeValidator,
		"events", producer != nil,
	)

	return &Services{
		Users:        users,
		Availability: availability,
		Appointments: appointments,
		handlers: []contracts.Handler{
			usershandler.NewUserHandler(users, cfg.Log),
			availhandler.NewAvailabilityHandler(availability, cfg.Log),
			apptshandler.NewAppointmentHandler(appointments, cfg.Log),
		},
		producer: producer,
	}, nil
}

// Handlers returns the HTTP surfaces to mount on the application router.
func (s *Services) Handlers() []contracts.Handler {
	return s.handlers
}

func (s *Services) Close() error {
	if s.producer == nil {
		return nil
	}
	return s.producer.Close()
}

type storeSet struct {
	rules    availrepo.RuleStore
	bookings apptsrepo.BookingStore
	users    usersrepo.UserRepository
}

// initStores picks one backend for every store, so users, rules and
// appointments survive a restart together.
func initStores(cfg *config.Config) (storeSet, error) {
	switch cfg.StoreBackend {
	case config.MongoBackend:
		if cfg.Client == nil || cfg.Client.Mongo == nil {
			return storeSet{}, fmt.Errorf("store backend %q requires a mongo connection", cfg.StoreBackend)
		}
		bookings := apptsrepo.NewMongoBookingStore(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()
		if err := bookings.EnsureIndexes(ctx); err != nil {
			return storeSet{}, fmt.Errorf("ensure appointment indexes: %w", err)
		}
		return storeSet{
			rules:    availrepo.NewMongoRuleStore(cfg),
			bookings: bookings,
			users:    usersrepo.NewMongoUserRepository(cfg),
		}, nil
	default:
		return storeSet{
			rules:    availrepo.NewMemoryRuleStore(),
			bookings: apptsrepo.NewMemoryBookingStore(),
			users:    usersrepo.NewMemoryUserRepository(),
		}, nil
	}
}

func initPublisher(cfg *config.Config, reg prometheus.Registerer) (events.Publisher, *kafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NopPublisher{}, nil, nil
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka config: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware(metrics.NewEventMetrics(reg)))
	}

	return events.NewKafkaPublisher(producer), producer, nil
}
