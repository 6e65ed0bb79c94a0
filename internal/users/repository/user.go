package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	userserrors "calendar/internal/users/errors"
	"calendar/pkg/model"
)

type UserRepository interface {
	// Create inserts user unless the id is taken, reporting whether it did.
	Create(ctx context.Context, user *model.User) (bool, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]model.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return false, nil
	}
	r.users[user.ID] = *user
	return true, nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, userserrors.ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByIDs(_ context.Context, ids []string) (map[string]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *memoryUserRepository) FindAll(_ context.Context, limit int, offset int64) ([]model.User, error) {
	r.mu.RLock()
	all := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b model.User) int {
		return strings.Compare(a.ID, b.ID)
	})

	if offset >= int64(len(all)) {
		return []model.User{}, nil
	}
	end := min(int64(len(all)), offset+int64(limit))
	return all[offset:end], nil
}

func (r *memoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return userserrors.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return userserrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[id]
	return ok, nil
}
