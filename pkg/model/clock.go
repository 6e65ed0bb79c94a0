package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"

	MinutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock time expressed as minutes after midnight.
// MinutesPerDay (24:00) denotes the midnight that closes a day.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	hour, herr := strconv.Atoi(s[:2])
	minute, merr := strconv.Atoi(s[3:])
	if herr != nil || merr != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// AsEnd reads 00:00 as the midnight closing the day.
func (t TimeOfDay) AsEnd() TimeOfDay {
	if t == 0 {
		return MinutesPerDay
	}
	return t
}

// On anchors t to the calendar date of day. 24:00 lands on the next date.
func (t TimeOfDay) On(day time.Time) time.Time {
	return StartOfDay(day).Add(time.Duration(t) * time.Minute)
}

func TimeOfDayOf(ts time.Time) TimeOfDay {
	return NewTimeOfDay(ts.Hour(), ts.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DayOfWeek follows time.Weekday numbering (0 = Sunday) and travels as an upper-case name.
type DayOfWeek int

func (d DayOfWeek) Weekday() time.Weekday {
	return time.Weekday(d)
}

func (d DayOfWeek) Valid() bool {
	return d >= DayOfWeek(time.Sunday) && d <= DayOfWeek(time.Saturday)
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DAY(%d)", int(d))
	}
	return strings.ToUpper(time.Weekday(d).String())
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return DayOfWeek(d), nil
		}
	}
	return 0, fmt.Errorf("invalid day of week %q", s)
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("day of week must be a string: %w", err)
	}
	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Appointment times are naive wall-clock values; they are kept in UTC so that
// arithmetic never crosses a DST transition.

func NaiveNow() time.Time {
	return Naive(time.Now())
}

func Naive(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

func StartOfDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDateTime(ts time.Time) string {
	return ts.Format(DateTimeLayout)
}
