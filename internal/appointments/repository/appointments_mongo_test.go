package repository

import (
	"context"
	"testing"
	"time"

	appointmentserrors "calendar/internal/appointments/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: calendar.Appointments index: owner_start_unique",
	})
}

func TestMongoBookingStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	start := monday.Add(16 * time.Hour)

	mt.Run("insert if slot free succeeds", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ok, err := store.InsertIfSlotFree(ctx, appointment("a1", "owner-1", start))

		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("insert if slot free loses on unique index", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(duplicateKeyResponse())

		ok, err := store.InsertIfSlotFree(ctx, appointment("a2", "owner-1", start))

		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("plain insert maps duplicate to slot booked", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(duplicateKeyResponse())

		err := store.Insert(ctx, appointment("a3", "owner-1", start))

		assert.ErrorIs(mt, err, appointmentserrors.ErrSlotAlreadyBooked)
	})

	mt.Run("exists counts matching documents", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		exists, err := store.ExistsByOwnerAndStartTime(ctx, "owner-1", start)

		require.NoError(mt, err)
		assert.True(mt, exists)
	})

	mt.Run("find by date decodes documents", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "a1"},
				{Key: "owner_id", Value: "owner-1"},
				{Key: "invitee_id", Value: "invitee-1"},
				{Key: "start_time", Value: start},
				{Key: "end_time", Value: start.Add(time.Hour)},
			},
		))

		appts, err := store.FindByOwnerAndDate(ctx, "owner-1", monday)

		require.NoError(mt, err)
		require.Len(mt, appts, 1)
		assert.Equal(mt, "a1", appts[0].AppointmentID)
		assert.True(mt, start.Equal(appts[0].StartTime))
	})

	mt.Run("find surfaces command errors", func(mt *mtest.T) {
		store := newMongoBookingStore(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := store.FindUpcoming(ctx, "owner-1", start, 10, 0)

		assert.Error(mt, err)
	})
}
