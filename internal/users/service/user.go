package service

import (
	"context"
	"errors"
	"time"

	userserrors "calendar/internal/users/errors"
	"calendar/internal/users/repository"
	"calendar/internal/users/validator"
	"calendar/pkg/config"
	apperrors "calendar/pkg/errors"
	"calendar/pkg/model"
	"calendar/pkg/sanitizer"
	"calendar/pkg/validation"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]model.User, int64, error)
	Update(ctx context.Context, id string, update *model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error
	// Exists answers the directory lookups made by the booking and availability flows.
	Exists(ctx context.Context, id string) bool
	FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User) error {
	s.sanitize(user)
	if err := s.validator.Validate(user); err != nil {
		return s.validationError("User validation failed", err)
	}

	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return apperrors.Internal("Failed to create user", err)
	}
	if !created {
		return userserrors.UserAlreadyExists(user.ID)
	}

	s.cfg.Log.Info("User created", "user_id", user.ID)
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	id = sanitizer.SanitizeID(id)
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, "Failed to get user", err)
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context, limit int, offset int64) ([]model.User, int64, error) {
	users, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list users", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}
	return users, total, nil
}

func (s *userService) Update(ctx context.Context, id string, update *model.UserUpdate) (*model.User, error) {
	id = sanitizer.SanitizeID(id)
	update.Name = sanitizer.SanitizeDisplayName(update.Name)
	update.Email = sanitizer.SanitizeEmail(update.Email)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError("User update validation failed", err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, "Failed to get user", err)
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Email != "" {
		user.Email = update.Email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.mapRepoError(id, "Failed to update user", err)
	}
	s.cfg.Log.Info("User updated", "user_id", id)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	id = sanitizer.SanitizeID(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(id, "Failed to delete user", err)
	}
	s.cfg.Log.Info("User deleted", "user_id", id)
	return nil
}

func (s *userService) Exists(ctx context.Context, id string) bool {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.cfg.Log.Warn("User lookup failed", "user_id", id, "error", err)
		return false
	}
	return exists
}

func (s *userService) FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to load users", err)
	}
	return users, nil
}

func (s *userService) sanitize(user *model.User) {
	user.ID = sanitizer.SanitizeID(user.ID)
	user.Name = sanitizer.SanitizeDisplayName(user.Name)
	user.Email = sanitizer.SanitizeEmail(user.Email)
}

func (s *userService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	return validation.ToAppError(message, err)
}

func (s *userService) mapRepoError(id, message string, err error) error {
	if errors.Is(err, userserrors.ErrUserNotFound) {
		return userserrors.UserNotFound(id)
	}
	return apperrors.Internal(message, err)
}
