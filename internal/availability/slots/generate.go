package slots

import (
	"cmp"
	"slices"
	"time"

	"calendar/pkg/model"
)

// Generate lists the free slots of the given date. rules must be merged;
// rules for other weekdays are ignored. booked holds the start times already
// taken on that date.
func Generate(rules []model.AvailabilityRule, booked map[model.TimeOfDay]struct{}, date time.Time, duration time.Duration) []model.Slot {
	step := stepMinutes(duration)
	if step == 0 {
		return nil
	}

	day := model.DayOfWeek(date.Weekday())
	dayRules := ForDay(rules, day)
	slices.SortFunc(dayRules, func(a, b model.AvailabilityRule) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})

	slots := make([]model.Slot, 0)
	for _, rule := range dayRules {
		walk(rule, step, func(start, end model.TimeOfDay) bool {
			if _, taken := booked[start]; !taken {
				slots = append(slots, model.Slot{
					StartDateTime: model.FormatDateTime(start.On(date)),
					EndDateTime:   model.FormatDateTime(end.On(date)),
				})
			}
			return true
		})
	}
	return slots
}

// Contains reports whether start is one of the slot starts the rules produce
// for its date, ignoring bookings.
func Contains(rules []model.AvailabilityRule, start time.Time, duration time.Duration) bool {
	step := stepMinutes(duration)
	if step == 0 {
		return false
	}
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return false
	}

	target := model.TimeOfDayOf(start)
	found := false
	for _, rule := range ForDay(rules, model.DayOfWeek(start.Weekday())) {
		walk(rule, step, func(s, _ model.TimeOfDay) bool {
			if s == target {
				found = true
			}
			return !found && s < target
		})
		if found {
			return true
		}
	}
	return false
}

// walk enumerates [cursor, cursor+step) windows inside rule until fn returns false.
func walk(rule model.AvailabilityRule, step int, fn func(start, end model.TimeOfDay) bool) {
	for cursor := rule.StartTime; ; {
		next := cursor + model.TimeOfDay(step)
		if next > rule.EndTime {
			return
		}
		// A window may close exactly at midnight but never run past it.
		if next <= cursor || next > model.MinutesPerDay {
			return
		}
		if !fn(cursor, next) {
			return
		}
		cursor = next
	}
}

func stepMinutes(duration time.Duration) int {
	return int(duration / time.Minute)
}

// BookedStarts indexes appointment start times by time of day.
func BookedStarts(appointments []model.Appointment) map[model.TimeOfDay]struct{} {
	booked := make(map[model.TimeOfDay]struct{}, len(appointments))
	for _, a := range appointments {
		booked[model.TimeOfDayOf(a.StartTime)] = struct{}{}
	}
	return booked
}
