package repository

import (
	"context"
	"testing"
	"time"

	userserrors "calendar/internal/users/errors"
	"calendar/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "User " + id},
		{Key: "email", Value: id + "@example.com"},
	}
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	alice := &model.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}

	mt.Run("create inserts new id", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Create(ctx, alice)

		require.NoError(mt, err)
		assert.True(mt, created)
	})

	mt.Run("create reports taken id on duplicate key", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: calendar.Users index: _id_",
		}))

		created, err := repo.Create(ctx, alice)

		require.NoError(mt, err)
		assert.False(mt, created)
	})

	mt.Run("find by id decodes document", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("alice")))

		user, err := repo.FindByID(ctx, "alice")

		require.NoError(mt, err)
		assert.Equal(mt, "alice", user.ID)
		assert.Equal(mt, "alice@example.com", user.Email)
	})

	mt.Run("find by id of unknown user is not found", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, "ghost")

		assert.ErrorIs(mt, err, userserrors.ErrUserNotFound)
	})

	mt.Run("find by ids maps the returned documents", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("alice"), userDoc("bob")))

		users, err := repo.FindByIDs(ctx, []string{"alice", "bob", "ghost"})

		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "User bob", users["bob"].Name)
	})

	mt.Run("find by no ids skips the query", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)

		users, err := repo.FindByIDs(ctx, nil)

		require.NoError(mt, err)
		assert.Empty(mt, users)
	})

	mt.Run("exists and count read aggregate totals", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
		)

		exists, err := repo.Exists(ctx, "alice")
		require.NoError(mt, err)
		assert.True(mt, exists)

		total, err := repo.Count(ctx)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
	})

	mt.Run("update of unknown user is not found", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Update(ctx, &model.User{ID: "ghost", Name: "Ghost", Email: "ghost@example.com"})

		assert.ErrorIs(mt, err, userserrors.ErrUserNotFound)
	})

	mt.Run("update replaces existing user", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.Update(ctx, alice))
	})

	mt.Run("delete reports missing user", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, "ghost")

		assert.ErrorIs(mt, err, userserrors.ErrUserNotFound)
	})

	mt.Run("delete removes user", func(mt *mtest.T) {
		repo := newMongoUserRepository(mt.Coll, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(ctx, "alice"))
	})
}
