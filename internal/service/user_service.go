package service

import (
	"context"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Profile returns the public view of a user, reputation included.
func (s *UserService) Profile(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}
