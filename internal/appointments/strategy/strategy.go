// Package strategy holds the slot-claiming algorithms. One is picked at
// startup and kept for the life of the process; mixing them at runtime would
// let optimistic writers bypass the pessimistic owner lock.
package strategy

import (
	"context"
	"fmt"
	"time"

	"calendar/internal/appointments/repository"
	"calendar/internal/locks"
	"calendar/pkg/config"
	"calendar/pkg/metrics"
	"calendar/pkg/model"
)

// Request is a validated booking request.
type Request struct {
	OwnerID   string
	InviteeID string
	StartTime time.Time
}

type Strategy interface {
	Name() string
	// Book claims the slot, reporting false if the owner already has an
	// appointment at req.StartTime.
	Book(ctx context.Context, req Request, duration time.Duration, appointmentID string) (bool, error)
}

func New(kind config.BookingStrategy, store repository.BookingStore, ownerLocks *locks.Coordinator, m *metrics.BookingMetrics) (Strategy, error) {
	switch kind {
	case config.Optimistic:
		return NewOptimistic(store), nil
	case config.Pessimistic:
		return NewPessimistic(store, ownerLocks, m), nil
	default:
		return nil, fmt.Errorf("unknown booking strategy %q", kind)
	}
}

func newAppointment(req Request, duration time.Duration, appointmentID string) model.Appointment {
	return model.Appointment{
		AppointmentID: appointmentID,
		OwnerID:       req.OwnerID,
		InviteeID:     req.InviteeID,
		StartTime:     req.StartTime,
		EndTime:       req.StartTime.Add(duration),
		CreatedAt:     time.Now().UTC(),
	}
}
