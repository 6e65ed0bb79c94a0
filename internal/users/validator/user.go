package validator

import (
	"calendar/pkg/logger"
	"calendar/pkg/model"
	"calendar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validation.New(log),
	}
}

func (v *UserValidator) Validate(user *model.User) error {
	return validation.Struct(v.validate, user)
}

func (v *UserValidator) ValidateUpdate(update *model.UserUpdate) error {
	return validation.Struct(v.validate, update)
}
