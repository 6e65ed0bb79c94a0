package service

import (
	"context"
	"fmt"
	"time"

	availerrors "calendar/internal/availability/errors"
	"calendar/internal/availability/repository"
	"calendar/internal/availability/slots"
	"calendar/internal/availability/validator"
	userserrors "calendar/internal/users/errors"
	"calendar/pkg/config"
	apperrors "calendar/pkg/errors"
	"calendar/pkg/metrics"
	"calendar/pkg/model"
	"calendar/pkg/sanitizer"
	"calendar/pkg/validation"
)

const (
	opCreate = "create"
	opUpdate = "update"

	resultCreated     = "created"
	resultOverwritten = "overwritten"
	resultConflict    = "conflict"
	resultRejected    = "rejected"
	resultError       = "error"
)

// UserDirectory answers whether an owner or invitee is known.
type UserDirectory interface {
	Exists(ctx context.Context, id string) bool
}

// AppointmentReader lists the bookings that remove slots from a day.
type AppointmentReader interface {
	FindByOwnerAndDate(ctx context.Context, ownerID string, date time.Time) ([]model.Appointment, error)
}

type AvailabilityService interface {
	CreateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (string, error)
	UpdateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (*model.UpdateRulesResult, error)
	GetAvailableSlots(ctx context.Context, ownerID string, date time.Time) ([]model.Slot, error)
}

type availabilityService struct {
	rules        repository.RuleStore
	appointments AppointmentReader
	users        UserDirectory
	validator    *validator.RulesValidator
	metrics      *metrics.BookingMetrics
	cfg          *config.Config
	now          func() time.Time
}

func NewAvailabilityService(
	rules repository.RuleStore,
	appointments AppointmentReader,
	users UserDirectory,
	validator *validator.RulesValidator,
	m *metrics.BookingMetrics,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		rules:        rules,
		appointments: appointments,
		users:        users,
		validator:    validator,
		metrics:      m,
		cfg:          cfg,
		now:          model.NaiveNow,
	}
}

func (s *availabilityService) CreateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (string, error) {
	ownerID, rules, err := s.prepare(req)
	if err != nil {
		s.metrics.ObserveRuleWrite(opCreate, resultRejected)
		return "", err
	}
	if !s.users.Exists(ctx, ownerID) {
		s.metrics.ObserveRuleWrite(opCreate, resultRejected)
		return "", userserrors.UserNotFound(ownerID)
	}

	created, err := s.rules.CreateIfAbsent(ctx, ownerID, rules)
	if err != nil {
		s.metrics.ObserveRuleWrite(opCreate, resultError)
		return "", apperrors.Internal("Failed to create availability rules", err)
	}
	if !created {
		s.metrics.ObserveRuleWrite(opCreate, resultConflict)
		s.cfg.Log.Warn("Availability rules already exist", "owner_id", ownerID)
		return "", availerrors.RulesAlreadyExist(ownerID)
	}

	s.metrics.ObserveRuleWrite(opCreate, resultCreated)
	s.cfg.Log.Info("Availability rules created", "owner_id", ownerID, "rules", len(rules))
	return fmt.Sprintf("Availability rules created successfully for owner id: %s", ownerID), nil
}

func (s *availabilityService) UpdateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (*model.UpdateRulesResult, error) {
	ownerID, rules, err := s.prepare(req)
	if err != nil {
		s.metrics.ObserveRuleWrite(opUpdate, resultRejected)
		return nil, err
	}
	if !s.users.Exists(ctx, ownerID) {
		s.metrics.ObserveRuleWrite(opUpdate, resultRejected)
		return nil, userserrors.UserNotFound(ownerID)
	}

	created, err := s.rules.Overwrite(ctx, ownerID, rules)
	if err != nil {
		s.metrics.ObserveRuleWrite(opUpdate, resultError)
		return nil, apperrors.Internal("Failed to update availability rules", err)
	}

	if created {
		s.metrics.ObserveRuleWrite(opUpdate, resultCreated)
		s.cfg.Log.Info("Availability rules created on update", "owner_id", ownerID, "rules", len(rules))
		return &model.UpdateRulesResult{
			Message: fmt.Sprintf("Availability rules created successfully for owner id: %s", ownerID),
			Created: true,
		}, nil
	}

	s.metrics.ObserveRuleWrite(opUpdate, resultOverwritten)
	s.cfg.Log.Info("Availability rules updated", "owner_id", ownerID, "rules", len(rules))
	return &model.UpdateRulesResult{
		Message: fmt.Sprintf("Availability rules updated successfully for owner id: %s", ownerID),
	}, nil
}

func (s *availabilityService) GetAvailableSlots(ctx context.Context, ownerID string, date time.Time) ([]model.Slot, error) {
	ownerID = sanitizer.SanitizeID(ownerID)
	date = model.StartOfDay(date)
	if date.Before(model.StartOfDay(s.now())) {
		return nil, availerrors.InvalidDate("Date must not be in the past")
	}
	if !s.users.Exists(ctx, ownerID) {
		return nil, userserrors.UserNotFound(ownerID)
	}

	rules, err := s.rules.FindByOwnerAndDay(ctx, ownerID, model.DayOfWeek(date.Weekday()))
	if err != nil {
		return nil, apperrors.Internal("Failed to load availability rules", err)
	}
	if len(rules) == 0 {
		s.metrics.ObserveSlots(0)
		return []model.Slot{}, nil
	}

	booked, err := s.appointments.FindByOwnerAndDate(ctx, ownerID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load appointments", err)
	}

	free := slots.Generate(slots.Merge(rules), slots.BookedStarts(booked), date, s.cfg.AppointmentDuration())
	s.metrics.ObserveSlots(len(free))
	return free, nil
}

// prepare validates a sanitized copy of req and returns its owner id with the
// rules stamped, normalized and merged. The caller's request is left untouched.
func (s *availabilityService) prepare(req *model.AvailabilitySetupRequest) (string, []model.AvailabilityRule, error) {
	clean := *req
	clean.OwnerID = sanitizer.SanitizeID(clean.OwnerID)
	if err := s.validator.Validate(&clean); err != nil {
		s.cfg.Log.Warn("Availability rules validation failed", "owner_id", clean.OwnerID, "error", err)
		appErr := validation.ToAppError("Availability rules validation failed", err)
		appErr.Err = availerrors.ErrInvalidRules
		return "", nil, appErr
	}

	rules := make([]model.AvailabilityRule, 0, len(clean.Rules))
	for _, r := range clean.Rules {
		rules = append(rules, model.AvailabilityRule{
			OwnerID:   clean.OwnerID,
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime,
			EndTime:   r.EndTime.AsEnd(),
		})
	}
	return clean.OwnerID, slots.Merge(rules), nil
}
