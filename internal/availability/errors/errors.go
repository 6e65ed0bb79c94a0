package errors

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "calendar/pkg/errors"
)

var (
	ErrRulesAlreadyExist = errors.New("availability rules already exist")

	ErrInvalidRules = errors.New("invalid availability rules")

	ErrInvalidDate = errors.New("invalid date")
)

func RulesAlreadyExist(ownerID string) error {
	return apperrors.Wrap(ErrRulesAlreadyExist, apperrors.CodeRulesAlreadyExist,
		fmt.Sprintf("Availability rules already exist for owner: %s", ownerID), http.StatusConflict)
}

func InvalidDate(message string) error {
	return apperrors.Wrap(ErrInvalidDate, apperrors.CodeInvalidInput, message, http.StatusBadRequest)
}
