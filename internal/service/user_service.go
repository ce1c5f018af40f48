package service

import (
	"context"
	"errors"
	"fmt"

	"user_management/internal/metrics"
	"user_management/internal/model"
	"user_management/internal/policy"
	"user_management/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrEmailTaken      = repository.ErrEmailTaken
)

// ForbiddenError is returned when the policy denies an authenticated actor
type ForbiddenError struct {
	Reason policy.Reason
}

func (e *ForbiddenError) Error() string {
	return string(e.Reason)
}

// UserService provides the user resource operations
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, actor *model.Actor, id int64, changes model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, actor *model.Actor, id int64) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
	log  zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository, log zerolog.Logger) UserService {
	return &userService{repo: repo, log: log}
}

// authorize turns a policy verdict into ErrUnauthenticated or a *ForbiddenError.
func authorize(actor *model.Actor, action policy.Action, id int64, changes model.UserUpdate) error {
	v := policy.Authorize(actor, action, id, changes)
	switch {
	case v.Allowed:
		return nil
	case v.Reason == policy.ReasonUnauthenticated:
		return ErrUnauthenticated
	default:
		return &ForbiddenError{Reason: v.Reason}
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error getting users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Int64("user_id", id).Msg("Error getting user")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *model.Actor, id int64, changes model.UserUpdate) (*model.User, error) {
	if err := authorize(actor, policy.ActionUpdate, id, changes); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) && !errors.Is(err, repository.ErrEmailTaken) {
			s.log.Error().Err(err).Int64("user_id", id).Msg("Error updating user")
		}
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues(policy.ActionUpdate.String()).Inc()
	s.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("User updated successfully")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *model.Actor, id int64) (*model.User, error) {
	if err := authorize(actor, policy.ActionDelete, id, model.UserUpdate{}); err != nil {
		return nil, err
	}

	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Int64("user_id", id).Msg("Error deleting user")
		}
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues(policy.ActionDelete.String()).Inc()
	s.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("User deleted successfully")
	return user, nil
}
