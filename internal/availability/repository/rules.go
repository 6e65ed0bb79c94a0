package repository

import (
	"context"
	"slices"
	"sync"

	"calendar/internal/availability/slots"
	"calendar/pkg/model"
)

// RuleStore keeps each owner's weekly availability. Both write operations
// are single atomic steps; callers never check-then-act across two calls.
type RuleStore interface {
	// CreateIfAbsent stores rules only if the owner has none, reporting whether it did.
	CreateIfAbsent(ctx context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error)
	// Overwrite replaces the owner's rules, reporting whether none existed before.
	Overwrite(ctx context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.AvailabilityRule, error)
	FindByOwnerAndDay(ctx context.Context, ownerID string, day model.DayOfWeek) ([]model.AvailabilityRule, error)
}

type memoryRuleStore struct {
	rules sync.Map // ownerID -> []model.AvailabilityRule, never mutated after store
}

func NewMemoryRuleStore() RuleStore {
	return &memoryRuleStore{}
}

func (s *memoryRuleStore) CreateIfAbsent(_ context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error) {
	_, loaded := s.rules.LoadOrStore(ownerID, slices.Clone(rules))
	return !loaded, nil
}

func (s *memoryRuleStore) Overwrite(_ context.Context, ownerID string, rules []model.AvailabilityRule) (bool, error) {
	_, loaded := s.rules.Swap(ownerID, slices.Clone(rules))
	return !loaded, nil
}

func (s *memoryRuleStore) FindByOwner(_ context.Context, ownerID string) ([]model.AvailabilityRule, error) {
	v, ok := s.rules.Load(ownerID)
	if !ok {
		return nil, nil
	}
	return slices.Clone(v.([]model.AvailabilityRule)), nil
}

func (s *memoryRuleStore) FindByOwnerAndDay(ctx context.Context, ownerID string, day model.DayOfWeek) ([]model.AvailabilityRule, error) {
	rules, err := s.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return slots.ForDay(rules, day), nil
}
