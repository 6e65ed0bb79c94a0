package repository

import (
	"context"
	"fmt"
	"time"

	appointmentserrors "calendar/internal/appointments/errors"
	"calendar/pkg/config"
	mongodb "calendar/pkg/db/mongo"
	"calendar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AppointmentsCollectionName = "Appointments"
	ownerStartIndexName        = "owner_start_unique"
)

var _ BookingStore = (*MongoBookingStore)(nil)

// MongoBookingStore is a BookingStore backed by a Mongo collection.
type MongoBookingStore struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewMongoBookingStore relies on a unique (owner_id, start_time) index; call
// EnsureIndexes once at startup.
func NewMongoBookingStore(cfg *config.Config) *MongoBookingStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return newMongoBookingStore(db.Collection(AppointmentsCollectionName), cfg.ReadTimeout, cfg.WriteTimeout)
}

func newMongoBookingStore(collection *mongo.Collection, readTimeout, writeTimeout time.Duration) *MongoBookingStore {
	return &MongoBookingStore{
		collection:   collection,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (s *MongoBookingStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	return mongodb.EnsureUniqueIndex(ctx, s.collection, ownerStartIndexName, bson.D{
		{Key: "owner_id", Value: 1},
		{Key: "start_time", Value: 1},
	})
}

func (s *MongoBookingStore) InsertIfSlotFree(ctx context.Context, appt model.Appointment) (bool, error) {
	err := s.insert(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return true, nil
}

func (s *MongoBookingStore) Insert(ctx context.Context, appt model.Appointment) error {
	err := s.insert(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: owner %s at %s", appointmentserrors.ErrSlotAlreadyBooked, appt.OwnerID, model.FormatDateTime(appt.StartTime))
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func (s *MongoBookingStore) insert(ctx context.Context, appt model.Appointment) error {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := s.collection.InsertOne(ctx, appt)
	return err
}

func (s *MongoBookingStore) ExistsByOwnerAndStartTime(ctx context.Context, ownerID string, start time.Time) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx,
		bson.M{"owner_id": ownerID, "start_time": start},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment: %w", err)
	}
	return count > 0, nil
}

func (s *MongoBookingStore) FindByOwnerAndDate(ctx context.Context, ownerID string, date time.Time) ([]model.Appointment, error) {
	day := model.StartOfDay(date)
	filter := bson.M{
		"owner_id":   ownerID,
		"start_time": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)},
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
}

func (s *MongoBookingStore) FindUpcoming(ctx context.Context, ownerID string, after time.Time, limit int, offset int64) ([]model.Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return s.find(ctx, upcomingFilter(ownerID, after), opts)
}

func (s *MongoBookingStore) CountUpcoming(ctx context.Context, ownerID string, after time.Time) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, upcomingFilter(ownerID, after))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (s *MongoBookingStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Appointment, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]model.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func upcomingFilter(ownerID string, after time.Time) bson.M {
	return bson.M{"owner_id": ownerID, "start_time": bson.M{"$gt": after}}
}
