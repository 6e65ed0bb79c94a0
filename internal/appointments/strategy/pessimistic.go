package strategy

import (
	"context"
	"time"

	"calendar/internal/appointments/repository"
	"calendar/internal/locks"
	"calendar/pkg/config"
	"calendar/pkg/metrics"
)

const ownerLockPrefix = "owner:"

// Pessimistic serializes all writers of one owner behind a keyed lock, then
// checks and inserts with plain store calls.
type Pessimistic struct {
	store   repository.BookingStore
	locks   *locks.Coordinator
	metrics *metrics.BookingMetrics
}

func NewPessimistic(store repository.BookingStore, ownerLocks *locks.Coordinator, m *metrics.BookingMetrics) *Pessimistic {
	if ownerLocks == nil {
		ownerLocks = locks.NewCoordinator(locks.DefaultTTL, locks.DefaultCapacity)
	}
	return &Pessimistic{store: store, locks: ownerLocks, metrics: m}
}

func (p *Pessimistic) Name() string { return string(config.Pessimistic) }

func (p *Pessimistic) Book(ctx context.Context, req Request, duration time.Duration, appointmentID string) (bool, error) {
	var booked bool
	waitStart := time.Now()
	err := p.locks.WithLock(ctx, ownerLockPrefix+req.OwnerID, func() error {
		p.metrics.ObserveLockWait("owner", time.Since(waitStart))

		exists, err := p.store.ExistsByOwnerAndStartTime(ctx, req.OwnerID, req.StartTime)
		if err != nil || exists {
			return err
		}
		if err := p.store.Insert(ctx, newAppointment(req, duration, appointmentID)); err != nil {
			return err
		}
		booked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return booked, nil
}
