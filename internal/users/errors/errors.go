package errors

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "calendar/pkg/errors"
)

var (
	ErrUserNotFound = errors.New("user not found")

	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserNotFound is the caller-facing form of ErrUserNotFound.
func UserNotFound(id string) error {
	return apperrors.Wrap(ErrUserNotFound, apperrors.CodeNotFound,
		fmt.Sprintf("User not found with id: %s", id), http.StatusNotFound).
		WithDetails(map[string]any{"resource": "User", "id": id})
}

func UserAlreadyExists(id string) error {
	return apperrors.Wrap(ErrUserAlreadyExists, apperrors.CodeConflict,
		fmt.Sprintf("User already exists with id: %s", id), http.StatusConflict)
}
