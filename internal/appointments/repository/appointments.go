package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"calendar/pkg/model"
)

// BookingStore keeps confirmed appointments per owner. No two appointments of
// one owner may share a start time.
type BookingStore interface {
	// InsertIfSlotFree atomically inserts appt unless its owner already has an
	// appointment at the same start time. It reports whether the insert happened.
	InsertIfSlotFree(ctx context.Context, appt model.Appointment) (bool, error)
	// Insert adds appt without checking; callers must already exclude other writers.
	Insert(ctx context.Context, appt model.Appointment) error
	ExistsByOwnerAndStartTime(ctx context.Context, ownerID string, start time.Time) (bool, error)
	FindByOwnerAndDate(ctx context.Context, ownerID string, date time.Time) ([]model.Appointment, error)
	FindUpcoming(ctx context.Context, ownerID string, after time.Time, limit int, offset int64) ([]model.Appointment, error)
	CountUpcoming(ctx context.Context, ownerID string, after time.Time) (int64, error)
}

// ownerBook is one owner's appointment list. The slice behind the pointer is
// immutable; writers publish a new slice with compare-and-swap.
type ownerBook struct {
	appointments atomic.Pointer[[]model.Appointment]
}

func (b *ownerBook) snapshot() []model.Appointment {
	if p := b.appointments.Load(); p != nil {
		return *p
	}
	return nil
}

type memoryBookingStore struct {
	owners sync.Map // ownerID -> *ownerBook
}

func NewMemoryBookingStore() BookingStore {
	return &memoryBookingStore{}
}

func (s *memoryBookingStore) book(ownerID string) *ownerBook {
	if v, ok := s.owners.Load(ownerID); ok {
		return v.(*ownerBook)
	}
	v, _ := s.owners.LoadOrStore(ownerID, &ownerBook{})
	return v.(*ownerBook)
}

// appointmentsOf reads one owner's list without registering an empty book for
// owners that have never booked.
func (s *memoryBookingStore) appointmentsOf(ownerID string) []model.Appointment {
	v, ok := s.owners.Load(ownerID)
	if !ok {
		return nil
	}
	return v.(*ownerBook).snapshot()
}

func (s *memoryBookingStore) InsertIfSlotFree(_ context.Context, appt model.Appointment) (bool, error) {
	b := s.book(appt.OwnerID)
	for {
		old := b.appointments.Load()
		var current []model.Appointment
		if old != nil {
			current = *old
		}
		if hasStart(current, appt.StartTime) {
			return false, nil
		}
		next := appendCopy(current, appt)
		if b.appointments.CompareAndSwap(old, &next) {
			return true, nil
		}
		// another writer won the swap; re-read and check again
	}
}

func (s *memoryBookingStore) Insert(_ context.Context, appt model.Appointment) error {
	b := s.book(appt.OwnerID)
	for {
		old := b.appointments.Load()
		var current []model.Appointment
		if old != nil {
			current = *old
		}
		next := appendCopy(current, appt)
		if b.appointments.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

func (s *memoryBookingStore) ExistsByOwnerAndStartTime(_ context.Context, ownerID string, start time.Time) (bool, error) {
	return hasStart(s.appointmentsOf(ownerID), start), nil
}

func (s *memoryBookingStore) FindByOwnerAndDate(_ context.Context, ownerID string, date time.Time) ([]model.Appointment, error) {
	day := model.StartOfDay(date)
	next := day.AddDate(0, 0, 1)

	var out []model.Appointment
	for _, a := range s.appointmentsOf(ownerID) {
		if !a.StartTime.Before(day) && a.StartTime.Before(next) {
			out = append(out, a)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *memoryBookingStore) FindUpcoming(_ context.Context, ownerID string, after time.Time, limit int, offset int64) ([]model.Appointment, error) {
	upcoming := s.upcoming(ownerID, after)
	if offset >= int64(len(upcoming)) {
		return []model.Appointment{}, nil
	}
	end := min(int64(len(upcoming)), offset+int64(limit))
	return upcoming[offset:end], nil
}

func (s *memoryBookingStore) CountUpcoming(_ context.Context, ownerID string, after time.Time) (int64, error) {
	return int64(len(s.upcoming(ownerID, after))), nil
}

func (s *memoryBookingStore) upcoming(ownerID string, after time.Time) []model.Appointment {
	var out []model.Appointment
	for _, a := range s.appointmentsOf(ownerID) {
		if a.StartTime.After(after) {
			out = append(out, a)
		}
	}
	sortByStart(out)
	return out
}

func hasStart(appointments []model.Appointment, start time.Time) bool {
	return slices.ContainsFunc(appointments, func(a model.Appointment) bool {
		return a.StartTime.Equal(start)
	})
}

func appendCopy(current []model.Appointment, appt model.Appointment) []model.Appointment {
	next := make([]model.Appointment, len(current), len(current)+1)
	copy(next, current)
	return append(next, appt)
}

func sortByStart(appointments []model.Appointment) {
	slices.SortFunc(appointments, func(a, b model.Appointment) int {
		return cmp.Compare(a.StartTime.UnixNano(), b.StartTime.UnixNano())
	})
}
