package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calendar/internal/availability/slots"
	"calendar/pkg/config"
	mongodb "calendar/pkg/db/mongo"
	"calendar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RulesCollectionName = "AvailabilityRules"
)

type ruleSetDocument struct {
	OwnerID   string                   `bson:"_id"`
	Rules     []model.AvailabilityRule `bson:"rules"`
	UpdatedAt time.Time                `bson:"updated_at"`
}

type mongoRuleStore struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewMongoRuleStore keeps one document per owner keyed by owner id, so the
// primary key index makes create-if-absent atomic.
func NewMongoRuleStore(cfg *config.Config) RuleStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return newMongoRuleStore(db.Collection(RulesCollectionName), cfg.ReadTimeout, cfg.WriteTimeout)
}

func newMongoRuleStore(collection *mongo.Collection, readTimeout, writeTimeout time.Duration) *mongoRuleStore {
	return &mongoRuleStore{
		collection:   collection,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (s *mongoRuleStore) CreateIfAbsent(ctx context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	doc := ruleSetDocument{OwnerID: ownerID, Rules: rules, UpdatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create availability rules: %w", err)
	}
	return true, nil
}

func (s *mongoRuleStore) Overwrite(ctx context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	doc := ruleSetDocument{OwnerID: ownerID, Rules: rules, UpdatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": ownerID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to overwrite availability rules: %w", err)
	}
	return result.UpsertedCount > 0, nil
}

func (s *mongoRuleStore) FindByOwner(ctx context.Context, ownerID string) ([]model.AvailabilityRule, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	var doc ruleSetDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find availability rules: %w", err)
	}
	return doc.Rules, nil
}

func (s *mongoRuleStore) FindByOwnerAndDay(ctx context.Context, ownerID string, day model.DayOfWeek) ([]model.AvailabilityRule, error) {
	rules, err := s.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return slots.ForDay(rules, day), nil
}
