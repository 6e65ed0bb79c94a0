package strategy

import (
	"context"
	"time"

	"calendar/internal/appointments/repository"
	"calendar/pkg/config"
)

// Optimistic takes no lock; the store's insert-if-slot-free primitive decides the race.
type Optimistic struct {
	store repository.BookingStore
}

func NewOptimistic(store repository.BookingStore) *Optimistic {
	return &Optimistic{store: store}
}

func (o *Optimistic) Name() string { return string(config.Optimistic) }

func (o *Optimistic) Book(ctx context.Context, req Request, duration time.Duration, appointmentID string) (bool, error) {
	return o.store.InsertIfSlotFree(ctx, newAppointment(req, duration, appointmentID))
}
