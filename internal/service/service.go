// Package service holds QueryHub's business rules: the vote and reputation
// engine, the accepted-answer rule and the CRUD services around them.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/emilythestrangee/queryhub/backend/internal/auth"
	"github.com/emilythestrangee/queryhub/backend/internal/cache"
	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

// Services wires every service over one set of collaborators.
type Services struct {
	Auth      *AuthService
	Users     *UserService
	Questions *QuestionService
	Answers   *AnswerService
	Comments  *CommentService
	Votes     *VoteService
	Tags      *TagService
	Stats     *StatsService
}

// New builds the service bundle. A nil cache disables caching and a nil
// publisher drops events.
func New(repos *repository.Repositories, c *cache.Cache, publisher events.Publisher, tokens *auth.TokenManager) *Services {
	return &Services{
		Auth:      NewAuthService(repos.Users, tokens),
		Users:     NewUserService(repos.Users),
		Questions: NewQuestionService(repos, c),
		Answers:   NewAnswerService(repos, publisher),
		Comments:  NewCommentService(repos),
		Votes:     NewVoteService(repos, publisher),
		Tags:      NewTagService(repos, c),
		Stats:     NewStatsService(repos, c),
	}
}

// publish hands event to p after the change it describes has committed.
// Failures are logged and never reach the caller.
func publish(ctx context.Context, p events.Publisher, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		observability.FromContext(ctx).Warn("event publish failed", "event_type", event.EventType(), "error", err)
	}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalizePage clamps limit to (0, MaxPageSize] and offset to >= 0.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// storageError converts repository sentinels into AppErrors.
func storageError(err error, resource string, id interface{}) error {
	var appErr *models.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, repository.ErrConflict):
		return models.NewConflictError(resource + " already exists")
	default:
		return models.NewInternalError(err)
	}
}

func requireText(value, field string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", models.NewValidationError(field + " is required")
	}
	if max > 0 && len(value) > max {
		return "", models.NewValidationError(field + " is too long")
	}
	return value, nil
}
