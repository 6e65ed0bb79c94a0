package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apptserrors "calendar/internal/appointments/errors"
	"calendar/internal/appointments/events"
	"calendar/internal/appointments/idempotency"
	"calendar/internal/appointments/repository"
	"calendar/internal/appointments/strategy"
	"calendar/internal/appointments/validator"
	"calendar/internal/locks"
	userserrors "calendar/internal/users/errors"
	"calendar/pkg/config"
	apperrors "calendar/pkg/errors"
	"calendar/pkg/metrics"
	"calendar/pkg/model"
	"calendar/pkg/sanitizer"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	MessageBooked         = "Appointment booked successfully."
	MessageAlreadyExists  = "Appointment already exists."
	idempotencyLockLabel  = "idempotency"
	defaultPublishTimeout = 5 * time.Second
)

type UserLookup interface {
	Exists(ctx context.Context, id string) bool
	FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
}

type AppointmentService interface {
	// Book reserves a slot at most once per idempotency key. A repeated key
	// returns the appointment the first call produced.
	Book(ctx context.Context, idempotencyKey string, req *model.BookAppointmentRequest) (*model.BookResult, error)
	GetUpcoming(ctx context.Context, ownerID string, limit int, offset int64) ([]model.UpcomingAppointment, int64, error)
}

type appointmentService struct {
	store     repository.BookingStore
	strategy  strategy.Strategy
	validator *validator.BookingValidator
	ledger    *idempotency.Ledger
	keyLocks  *locks.Coordinator
	users     UserLookup
	publisher events.Publisher
	metrics   *metrics.BookingMetrics
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	store repository.BookingStore,
	strat strategy.Strategy,
	validator *validator.BookingValidator,
	ledger *idempotency.Ledger,
	keyLocks *locks.Coordinator,
	users UserLookup,
	publisher events.Publisher,
	m *metrics.BookingMetrics,
	cfg *config.Config,
) AppointmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &appointmentService{
		store:     store,
		strategy:  strat,
		validator: validator,
		ledger:    ledger,
		keyLocks:  keyLocks,
		users:     users,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		now:       model.NaiveNow,
	}
}

func (s *appointmentService) Book(ctx context.Context, idempotencyKey string, req *model.BookAppointmentRequest) (*model.BookResult, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeRejected)
		return nil, apptserrors.MissingIdempotencyKey()
	}

	if id, ok := s.ledger.Get(key); ok {
		return s.replay(key, id), nil
	}

	h := s.keyLocks.Acquire(key)
	defer s.keyLocks.Release(h)

	waitStart := time.Now()
	if err := h.Lock(ctx); err != nil {
		return nil, s.lockError(key, err)
	}
	defer h.Unlock()
	s.metrics.ObserveLockWait(idempotencyLockLabel, time.Since(waitStart))

	// a concurrent holder of this key may have finished while we waited
	if id, ok := s.ledger.Get(key); ok {
		return s.replay(key, id), nil
	}

	clean := *req
	clean.OwnerID = sanitizer.SanitizeID(clean.OwnerID)
	clean.InviteeID = sanitizer.SanitizeID(clean.InviteeID)
	start, err := s.validator.Validate(ctx, &clean)
	if err != nil {
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeRejected)
		s.cfg.Log.Warn("Booking request rejected",
			"idempotency_key", key,
			"owner_id", clean.OwnerID,
			"error", err,
		)
		return nil, err
	}

	appointmentID := uuid.NewString()
	booked, err := s.strategy.Book(ctx, strategy.Request{
		OwnerID:   clean.OwnerID,
		InviteeID: clean.InviteeID,
		StartTime: start,
	}, s.cfg.AppointmentDuration(), appointmentID)
	if err != nil {
		return nil, s.strategyError(key, clean.OwnerID, err)
	}
	if !booked {
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeSlotTaken)
		s.cfg.Log.Info("Slot already booked",
			"idempotency_key", key,
			"owner_id", clean.OwnerID,
			"start_time", model.FormatDateTime(start),
		)
		return nil, apptserrors.SlotAlreadyBooked(clean.OwnerID)
	}

	s.ledger.Put(key, appointmentID)
	s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeBooked)
	s.cfg.Log.Info("Appointment booked",
		"appointment_id", appointmentID,
		"idempotency_key", key,
		"owner_id", clean.OwnerID,
		"invitee_id", clean.InviteeID,
		"start_time", model.FormatDateTime(start),
		"strategy", s.strategy.Name(),
	)

	s.publishBooked(ctx, model.Appointment{
		AppointmentID: appointmentID,
		OwnerID:       clean.OwnerID,
		InviteeID:     clean.InviteeID,
		StartTime:     start,
		EndTime:       start.Add(s.cfg.AppointmentDuration()),
		CreatedAt:     time.Now().UTC(),
	})

	return &model.BookResult{
		AppointmentID: appointmentID,
		NewlyCreated:  true,
		Message:       MessageBooked,
	}, nil
}

func (s *appointmentService) replay(key, appointmentID string) *model.BookResult {
	s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeReplayed)
	s.cfg.Log.Debug("Idempotent replay", "idempotency_key", key, "appointment_id", appointmentID)
	return &model.BookResult{
		AppointmentID: appointmentID,
		NewlyCreated:  false,
		Message:       MessageAlreadyExists,
	}
}

// publishBooked runs after the ledger write, so a broker failure is logged
// and never reported to the caller.
func (s *appointmentService) publishBooked(ctx context.Context, appt model.Appointment) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	defer cancel()

	if err := s.publisher.AppointmentBooked(pubCtx, appt); err != nil {
		s.cfg.Log.Error("Failed to publish appointment booked event",
			"appointment_id", appt.AppointmentID,
			"owner_id", appt.OwnerID,
			"error", err,
		)
	}
}

func (s *appointmentService) lockError(key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeLockTimeout)
		s.cfg.Log.Warn("Timed out waiting for booking lock", "idempotency_key", key, "error", err)
		return apperrors.Wrap(err, apperrors.CodeTimeout, "Timed out waiting for booking lock", http.StatusGatewayTimeout)
	}
	s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeError)
	return apperrors.Internal("Failed to acquire booking lock", err)
}

func (s *appointmentService) strategyError(key, ownerID string, err error) error {
	switch {
	case errors.Is(err, apptserrors.ErrSlotAlreadyBooked):
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeSlotTaken)
		return apptserrors.SlotAlreadyBooked(ownerID)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return s.lockError(key, err)
	default:
		s.metrics.ObserveBooking(s.strategy.Name(), metrics.OutcomeError)
		s.cfg.Log.Error("Booking strategy failed",
			"idempotency_key", key,
			"owner_id", ownerID,
			"strategy", s.strategy.Name(),
			"error", err,
		)
		return apperrors.Internal("Failed to book appointment", err)
	}
}

func (s *appointmentService) GetUpcoming(ctx context.Context, ownerID string, limit int, offset int64) ([]model.UpcomingAppointment, int64, error) {
	ownerID = sanitizer.SanitizeID(ownerID)
	if !s.users.Exists(ctx, ownerID) {
		return nil, 0, userserrors.UserNotFound(ownerID)
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	now := s.now()

	var (
		appointments []model.Appointment
		total        int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appointments, err = s.store.FindUpcoming(gctx, ownerID, now, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountUpcoming(gctx, ownerID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, apperrors.Internal("Failed to load upcoming appointments", err)
	}

	ids := make([]string, 0, len(appointments))
	seen := make(map[string]struct{}, len(appointments))
	for _, a := range appointments {
		if _, ok := seen[a.InviteeID]; !ok {
			seen[a.InviteeID] = struct{}{}
			ids = append(ids, a.InviteeID)
		}
	}
	invitees, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to load invitees", err)
	}

	out := make([]model.UpcomingAppointment, 0, len(appointments))
	for _, a := range appointments {
		u := model.UpcomingAppointment{Appointment: a}
		if invitee, ok := invitees[a.InviteeID]; ok {
			u.InviteeName = invitee.Name
			u.InviteeEmail = invitee.Email
		}
		out = append(out, u)
	}
	return out, total, nil
}
