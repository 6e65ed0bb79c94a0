package validator

import (
	"fmt"

	"calendar/pkg/logger"
	"calendar/pkg/model"
	"calendar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ruleKey struct {
	day        model.DayOfWeek
	start, end model.TimeOfDay
}

type RulesValidator struct {
	validate *validator.Validate
	maxRules int
}

func NewRulesValidator(log *logger.Logger, maxRules int) *RulesValidator {
	return &RulesValidator{
		validate: validation.New(log),
		maxRules: maxRules,
	}
}

// Validate checks the request shape and every rule. All rule problems are
// reported together, keyed by their position in the list.
func (v *RulesValidator) Validate(req *model.AvailabilitySetupRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}

	if len(req.Rules) == 0 {
		return validation.ValidationErrors{{Field: "rules", Message: "rules is required"}}
	}
	if len(req.Rules) > v.maxRules {
		return validation.ValidationErrors{{
			Field:   "rules",
			Message: fmt.Sprintf("at most %d rules are allowed per owner, got %d", v.maxRules, len(req.Rules)),
		}}
	}

	var errs validation.ValidationErrors
	seen := make(map[ruleKey]int, len(req.Rules))

	for i, rule := range req.Rules {
		field := fmt.Sprintf("rules[%d]", i)

		if !rule.DayOfWeek.Valid() {
			errs = append(errs, validation.ValidationError{Field: field + ".day_of_week", Message: "day_of_week is invalid"})
		}
		if rule.StartTime.Minute() != 0 {
			errs = append(errs, validation.ValidationError{
				Field:   field + ".start_time",
				Message: fmt.Sprintf("start_time must be a full hour, got %s", rule.StartTime),
			})
		}
		if rule.EndTime.Minute() != 0 {
			errs = append(errs, validation.ValidationError{
				Field:   field + ".end_time",
				Message: fmt.Sprintf("end_time must be a full hour, got %s", rule.EndTime),
			})
		}

		end := rule.EndTime.AsEnd()
		if rule.StartTime >= end {
			errs = append(errs, validation.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("start_time %s must be before end_time %s", rule.StartTime, rule.EndTime),
			})
		}

		key := ruleKey{day: rule.DayOfWeek, start: rule.StartTime, end: end}
		if first, dup := seen[key]; dup {
			errs = append(errs, validation.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicates rules[%d]", first),
			})
			continue
		}
		seen[key] = i
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
