package service

import (
	"context"
	"errors"
	"strings"

	"github.com/emilythestrangee/queryhub/backend/internal/cache"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

const DefaultPopularTags = 10

type TagService struct {
	repos *repository.Repositories
	cache *cache.Cache
}

func NewTagService(repos *repository.Repositories, c *cache.Cache) *TagService {
	return &TagService{repos: repos, cache: c}
}

func (s *TagService) Create(ctx context.Context, name, description string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !models.ValidTagName(name) {
		return nil, models.NewValidationError("invalid tag name")
	}

	existing, err := s.repos.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError("tag '" + name + "' already exists")
	}

	tag := &models.Tag{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repos.Tags.Create(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewConflictError("tag '" + name + "' already exists")
		}
		return nil, models.NewInternalError(err)
	}

	s.invalidate(ctx)
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, id int) (*models.Tag, error) {
	tag, err := s.repos.Tags.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tag == nil {
		return nil, models.NewNotFoundError("Tag", id)
	}
	return tag, nil
}

func (s *TagService) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.repos.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tag == nil {
		return nil, models.NewNotFoundError("Tag", name)
	}
	return tag, nil
}

// List returns tags whose name contains search, alphabetically.
func (s *TagService) List(ctx context.Context, search string) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := s.cache.Aside(ctx, cache.TagListKey(search), &tags, cache.TagsTTL, func() error {
		var err error
		tags, err = s.repos.Tags.List(ctx, search)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return tags, nil
}

// Popular returns the limit most used tags.
func (s *TagService) Popular(ctx context.Context, limit int) ([]*models.Tag, error) {
	if limit <= 0 {
		limit = DefaultPopularTags
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var tags []*models.Tag
	err := s.cache.Aside(ctx, cache.PopularTagsKey(limit), &tags, cache.TagsTTL, func() error {
		var err error
		tags, err = s.repos.Tags.Popular(ctx, limit)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return tags, nil
}

func (s *TagService) ForQuestion(ctx context.Context, questionID int) ([]*models.Tag, error) {
	tags, err := s.repos.Tags.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return tags, nil
}

func (s *TagService) QuestionCount(ctx context.Context, id int) (int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.repos.Tags.QuestionCount(ctx, id)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (s *TagService) Update(ctx context.Context, id int, name, description string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !models.ValidTagName(name) {
		return nil, models.NewValidationError("invalid tag name")
	}

	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if other, err := s.repos.Tags.GetByName(ctx, name); err != nil {
		return nil, models.NewInternalError(err)
	} else if other != nil && other.ID != id {
		return nil, models.NewConflictError("tag '" + name + "' already exists")
	}

	tag.Name = name
	tag.Description = strings.TrimSpace(description)
	if err := s.repos.Tags.Update(ctx, tag); err != nil {
		return nil, storageError(err, "Tag", id)
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes an unused tag. Tags still attached to questions are kept.
func (s *TagService) Delete(ctx context.Context, id int) error {
	n, err := s.QuestionCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return models.NewConflictError("tag is used by questions and cannot be deleted")
	}
	if err := s.repos.Tags.Delete(ctx, id); err != nil {
		return storageError(err, "Tag", id)
	}

	s.invalidate(ctx)
	return nil
}

func (s *TagService) invalidate(ctx context.Context) {
	s.cache.InvalidatePrefix(ctx, cache.TagsPrefix())
	s.cache.Invalidate(ctx, cache.StatsKey)
}
