package validator

import (
	"context"
	"time"

	apptserrors "calendar/internal/appointments/errors"
	"calendar/internal/availability/slots"
	userserrors "calendar/internal/users/errors"
	apperrors "calendar/pkg/errors"
	"calendar/pkg/logger"
	"calendar/pkg/model"
	"calendar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserDirectory interface {
	Exists(ctx context.Context, id string) bool
}

type RuleReader interface {
	FindByOwnerAndDay(ctx context.Context, ownerID string, day model.DayOfWeek) ([]model.AvailabilityRule, error)
}

type BookingValidator struct {
	validate *validator.Validate
	policy   TimePolicy
	users    UserDirectory
	rules    RuleReader
	duration time.Duration
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger, policy TimePolicy, users UserDirectory, rules RuleReader, duration time.Duration) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(log),
		policy:   policy,
		users:    users,
		rules:    rules,
		duration: duration,
		now:      model.NaiveNow,
	}
}

// Validate checks req against the directory, the time policy and the owner's
// availability, returning the parsed start time.
func (v *BookingValidator) Validate(ctx context.Context, req *model.BookAppointmentRequest) (time.Time, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		return time.Time{}, validation.ToAppError("Appointment validation failed", err)
	}

	start, err := model.ParseDateTime(req.StartDateTime)
	if err != nil {
		return time.Time{}, apptserrors.InvalidStartDateTime("start_date_time must match " + model.DateTimeLayout)
	}
	if !start.After(v.now()) {
		return time.Time{}, apperrors.Validation("Appointment validation failed", map[string]any{
			"start_date_time": "start_date_time must be in the future",
		})
	}

	if !v.users.Exists(ctx, req.OwnerID) {
		return time.Time{}, userserrors.UserNotFound(req.OwnerID)
	}
	if !v.users.Exists(ctx, req.InviteeID) {
		return time.Time{}, userserrors.UserNotFound(req.InviteeID)
	}

	if err := v.policy.Validate(start, start.Add(v.duration)); err != nil {
		return time.Time{}, err
	}

	rules, err := v.rules.FindByOwnerAndDay(ctx, req.OwnerID, model.DayOfWeek(start.Weekday()))
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to load availability rules", err)
	}
	if !slots.Contains(slots.Merge(rules), start, v.duration) {
		return time.Time{}, apptserrors.AvailableSlotNotFound(req.OwnerID, start)
	}

	return start, nil
}
