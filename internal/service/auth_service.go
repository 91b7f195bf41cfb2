package service

import (
	"context"
	"errors"
	"strings"

	"github.com/emilythestrangee/queryhub/backend/internal/auth"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, models.NewValidationError("username, email and password are required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, models.NewInternalError(err)
	} else if existing != nil {
		return nil, models.NewConflictError("email is already registered")
	}
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, models.NewInternalError(err)
	} else if existing != nil {
		return nil, models.NewConflictError("username is already taken")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Name:     strings.TrimSpace(req.Name),
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewConflictError("username or email is already in use")
		}
		return nil, models.NewInternalError(err)
	}

	return s.respond(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(user.Password, req.Password) {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.AuthResponse{
		Token:      token,
		ExpiresAt:  exp,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Reputation: user.Reputation,
	}, nil
}

// Authenticate resolves a bearer token to the user id it carries.
func (s *AuthService) Authenticate(token string) (int, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return 0, models.NewUnauthorizedError("invalid or expired token")
	}
	return claims.UserID, nil
}
