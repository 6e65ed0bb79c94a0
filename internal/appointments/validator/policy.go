package validator

import (
	"fmt"
	"time"

	apptserrors "calendar/internal/appointments/errors"
	"calendar/pkg/config"
	"calendar/pkg/model"
)

// TimePolicy decides which [start, end) windows may be booked.
type TimePolicy interface {
	Validate(start, end time.Time) error
}

// FullHourPolicy admits appointments that start on the hour and last exactly Duration.
type FullHourPolicy struct {
	Duration time.Duration
}

func (p FullHourPolicy) Validate(start, end time.Time) error {
	minutes := int(p.Duration / time.Minute)
	if start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return apptserrors.InvalidStartDateTime(
			fmt.Sprintf("Appointments must start at the top of the hour and last %d minutes", minutes))
	}
	if end.Sub(start) != p.Duration {
		return apptserrors.InvalidStartDateTime(fmt.Sprintf("Appointment must be exactly %d minutes long", minutes))
	}
	return nil
}

// DurationGridPolicy admits appointments whose start falls on a multiple of
// Duration counted from midnight.
type DurationGridPolicy struct {
	Duration time.Duration
}

func (p DurationGridPolicy) Validate(start, end time.Time) error {
	minutes := int(p.Duration / time.Minute)
	if minutes <= 0 {
		return apptserrors.InvalidStartDateTime("Appointment duration is not configured")
	}
	if start.Second() != 0 || start.Nanosecond() != 0 || int(model.TimeOfDayOf(start))%minutes != 0 {
		return apptserrors.InvalidStartDateTime(
			fmt.Sprintf("Appointments must start on a %d minute boundary", minutes))
	}
	if end.Sub(start) != p.Duration {
		return apptserrors.InvalidStartDateTime(fmt.Sprintf("Appointment must be exactly %d minutes long", minutes))
	}
	return nil
}

func NewTimePolicy(kind config.TimeValidator, duration time.Duration) (TimePolicy, error) {
	switch kind {
	case config.FullHour, "":
		return FullHourPolicy{Duration: duration}, nil
	case config.DurationGrid:
		return DurationGridPolicy{Duration: duration}, nil
	default:
		return nil, fmt.Errorf("unknown time validator %q", kind)
	}
}
