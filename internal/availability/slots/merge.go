package slots

import (
	"cmp"
	"slices"

	"calendar/pkg/model"
)

// Merge coalesces overlapping or touching intervals of the same weekday.
// The result is ordered by day and then by start time; the input is not modified.
func Merge(rules []model.AvailabilityRule) []model.AvailabilityRule {
	if len(rules) == 0 {
		return nil
	}

	byDay := make(map[model.DayOfWeek][]model.AvailabilityRule)
	for _, r := range rules {
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
	}

	days := make([]model.DayOfWeek, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	slices.Sort(days)

	merged := make([]model.AvailabilityRule, 0, len(rules))
	for _, d := range days {
		merged = append(merged, mergeDay(byDay[d])...)
	}
	return merged
}

func mergeDay(group []model.AvailabilityRule) []model.AvailabilityRule {
	slices.SortFunc(group, func(a, b model.AvailabilityRule) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})

	out := make([]model.AvailabilityRule, 0, len(group))
	current := group[0]
	for _, next := range group[1:] {
		if current.EndTime >= next.StartTime {
			current.EndTime = max(current.EndTime, next.EndTime)
			continue
		}
		out = append(out, current)
		current = next
	}
	return append(out, current)
}

// ForDay returns the rules that apply to the given weekday.
func ForDay(rules []model.AvailabilityRule, day model.DayOfWeek) []model.AvailabilityRule {
	var out []model.AvailabilityRule
	for _, r := range rules {
		if r.DayOfWeek == day {
			out = append(out, r)
		}
	}
	return out
}
