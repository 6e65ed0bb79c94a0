package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"calendar/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func appointment(id, owner string, start time.Time) model.Appointment {
	return model.Appointment{
		AppointmentID: id,
		OwnerID:       owner,
		InviteeID:     "invitee-" + id,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
	}
}

func TestMemoryBookingStore_InsertIfSlotFree(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()
	start := monday.Add(16 * time.Hour)

	ok, err := store.InsertIfSlotFree(ctx, appointment("a1", "owner-1", start))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.InsertIfSlotFree(ctx, appointment("a2", "owner-1", start))
	require.NoError(t, err)
	assert.False(t, ok, "same owner and start must be rejected")

	ok, err = store.InsertIfSlotFree(ctx, appointment("a3", "owner-2", start))
	require.NoError(t, err)
	assert.True(t, ok, "other owners are independent")
}

func TestMemoryBookingStore_ConcurrentSameSlotHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()
	start := monday.Add(22 * time.Hour)

	var wins int32
	var wg sync.WaitGroup
	gate := make(chan struct{})
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			ok, err := store.InsertIfSlotFree(ctx, appointment(fmt.Sprintf("a%d", i), "owner-1", start))
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	appts, err := store.FindByOwnerAndDate(ctx, "owner-1", monday)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestMemoryBookingStore_ConcurrentDistinctSlotsAllLand(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()

	var wg sync.WaitGroup
	for i := range 24 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.InsertIfSlotFree(ctx, appointment(fmt.Sprintf("a%d", i), "owner-1", monday.Add(time.Duration(i)*time.Hour)))
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	appts, err := store.FindByOwnerAndDate(ctx, "owner-1", monday)
	require.NoError(t, err)
	require.Len(t, appts, 24, "lost CAS updates would drop appointments")
	for i, a := range appts {
		assert.Equal(t, monday.Add(time.Duration(i)*time.Hour), a.StartTime)
	}
}

func TestMemoryBookingStore_InsertAndExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()
	start := monday.Add(10 * time.Hour)

	exists, err := store.ExistsByOwnerAndStartTime(ctx, "owner-1", start)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Insert(ctx, appointment("a1", "owner-1", start)))

	exists, err = store.ExistsByOwnerAndStartTime(ctx, "owner-1", start)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryBookingStore_FindByOwnerAndDate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()

	require.NoError(t, store.Insert(ctx, appointment("late", "owner-1", monday.Add(23*time.Hour))))
	require.NoError(t, store.Insert(ctx, appointment("early", "owner-1", monday.Add(9*time.Hour))))
	require.NoError(t, store.Insert(ctx, appointment("tuesday", "owner-1", monday.AddDate(0, 0, 1))))
	require.NoError(t, store.Insert(ctx, appointment("sunday", "owner-1", monday.Add(-time.Hour))))

	appts, err := store.FindByOwnerAndDate(ctx, "owner-1", monday.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "early", appts[0].AppointmentID)
	assert.Equal(t, "late", appts[1].AppointmentID)
}

func TestMemoryBookingStore_Upcoming(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()
	now := monday.Add(12 * time.Hour)

	for h := 8; h <= 20; h += 2 {
		require.NoError(t, store.Insert(ctx, appointment(fmt.Sprintf("h%d", h), "owner-1", monday.Add(time.Duration(h)*time.Hour))))
	}

	total, err := store.CountUpcoming(ctx, "owner-1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total, "14, 16, 18 and 20 are after noon")

	page, err := store.FindUpcoming(ctx, "owner-1", now, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "h16", page[0].AppointmentID)
	assert.Equal(t, "h18", page[1].AppointmentID)

	empty, err := store.FindUpcoming(ctx, "owner-1", now, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryBookingStore_ReadsDoNotRegisterOwners(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore().(*memoryBookingStore)

	for i := 0; i < 50; i++ {
		owner := fmt.Sprintf("stranger-%d", i)
		exists, err := store.ExistsByOwnerAndStartTime(ctx, owner, monday)
		require.NoError(t, err)
		assert.False(t, exists)

		appts, err := store.FindByOwnerAndDate(ctx, owner, monday)
		require.NoError(t, err)
		assert.Empty(t, appts)

		total, err := store.CountUpcoming(ctx, owner, monday)
		require.NoError(t, err)
		assert.Zero(t, total)

		page, err := store.FindUpcoming(ctx, owner, monday, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, page)
	}

	require.NoError(t, store.Insert(ctx, appointment("a1", "owner-1", monday)))

	owners := 0
	store.owners.Range(func(_, _ any) bool {
		owners++
		return true
	})
	assert.Equal(t, 1, owners)
}
