package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "calendar/pkg/errors"
	"calendar/pkg/model"
)

var (
	ErrSlotAlreadyBooked = errors.New("appointment slot already booked")

	ErrAvailableSlotNotFound = errors.New("no available slot found")

	ErrInvalidStartDateTime = errors.New("invalid appointment start date time")

	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
)

func SlotAlreadyBooked(ownerID string) error {
	return apperrors.Wrap(ErrSlotAlreadyBooked, apperrors.CodeSlotAlreadyBooked,
		fmt.Sprintf("Appointment slot already booked for owner: %s", ownerID), http.StatusConflict)
}

func AvailableSlotNotFound(ownerID string, start time.Time) error {
	return apperrors.Wrap(ErrAvailableSlotNotFound, apperrors.CodeAvailableSlotNotFound,
		fmt.Sprintf("No available slot found at: %s for owner: %s", model.FormatDateTime(start), ownerID),
		http.StatusBadRequest)
}

func InvalidStartDateTime(message string) error {
	return apperrors.Wrap(ErrInvalidStartDateTime, apperrors.CodeInvalidStartDateTime, message, http.StatusBadRequest)
}

func MissingIdempotencyKey() error {
	return apperrors.Wrap(ErrMissingIdempotencyKey, apperrors.CodeInvalidInput,
		"Idempotency-Key header is required", http.StatusBadRequest)
}
