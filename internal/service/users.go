package service

import (
	"context"
	"errors"

	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
)

// UserService exposes read access to accounts.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns every account.
func (s *UserService) List(ctx context.Context) (Result[[]models.User], error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return Result[[]models.User]{}, err
	}
	return OK(users, ""), nil
}

// Get returns one account if the actor may see it.
func (s *UserService) Get(ctx context.Context, actor policy.Actor, id int64) (Result[*models.User], error) {
	if !policy.CanViewUser(actor, id) {
		return Fail[*models.User](KindForbidden, "You don't have permission to view this user."), nil
	}
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.User](KindNotFound, "User not found."), nil
	}
	if err != nil {
		return Result[*models.User]{}, err
	}
	return OK(&user, ""), nil
}
