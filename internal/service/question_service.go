package service

import (
	"context"
	"errors"
	"strings"

	"github.com/emilythestrangee/queryhub/backend/internal/cache"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
	"github.com/emilythestrangee/queryhub/backend/internal/search"
)

const MaxTagsPerQuestion = 5

type QuestionService struct {
	repos *repository.Repositories
	cache *cache.Cache
}

func NewQuestionService(repos *repository.Repositories, c *cache.Cache) *QuestionService {
	return &QuestionService{repos: repos, cache: c}
}

type CreateQuestionInput struct {
	AuthorID    int
	Title       string
	Description string
	Body        string
	Tags        []string
}

type UpdateQuestionInput struct {
	ID          int
	RequesterID int
	Title       *string
	Description *string
	Body        *string
	// Tags replaces the question's tags when non-nil.
	Tags []string
}

type ListQuestionsInput struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}

// normalizeTagNames lower-cases, trims and de-duplicates names, keeping order.
func normalizeTagNames(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		if !models.ValidTagName(name) {
			return nil, models.NewValidationError("invalid tag name: " + name)
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) > MaxTagsPerQuestion {
		return nil, models.NewValidationError("a question can have at most 5 tags")
	}
	return out, nil
}

// attachTags links names to questionID, creating any tag that does not exist yet.
func attachTags(ctx context.Context, tx *repository.Repositories, questionID int, names []string) error {
	for _, name := range names {
		tag, err := tx.Tags.GetByName(ctx, name)
		if err != nil {
			return models.NewInternalError(err)
		}
		if tag == nil {
			tag = &models.Tag{Name: name}
			if err := tx.Tags.Create(ctx, tag); err != nil {
				if !errors.Is(err, repository.ErrConflict) {
					return models.NewInternalError(err)
				}
				if tag, err = tx.Tags.GetByName(ctx, name); err != nil || tag == nil {
					return models.NewInternalError(err)
				}
			}
		}
		if err := tx.Tags.AddToQuestion(ctx, questionID, tag.ID); err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}

func (s *QuestionService) Create(ctx context.Context, in CreateQuestionInput) (*models.Question, error) {
	if in.AuthorID <= 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	title, err := requireText(in.Title, "title", 300)
	if err != nil {
		return nil, err
	}
	body, err := requireText(in.Body, "body", 0)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTagNames(in.Tags)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Body:        body,
		UserID:      in.AuthorID,
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Questions.Create(ctx, question); err != nil {
			return models.NewInternalError(err)
		}
		return attachTags(ctx, tx, question.ID, tags)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.load(ctx, question.ID)
}

func (s *QuestionService) load(ctx context.Context, id int) (*models.Question, error) {
	question, err := s.repos.Questions.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if question == nil {
		return nil, models.NewNotFoundError("Question", id)
	}
	return question, nil
}

// Get returns a question with its answers and counts one view.
func (s *QuestionService) Get(ctx context.Context, id int) (*models.Question, error) {
	if err := s.repos.Questions.IncrementViews(ctx, id); err != nil {
		return nil, storageError(err, "Question", id)
	}
	question, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.repos.Answers.ListByQuestion(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	question.Answers = make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		question.Answers = append(question.Answers, *a)
	}
	return question, nil
}

// List filters by exact tag name when in.Tag is set, otherwise evaluates in.Search.
func (s *QuestionService) List(ctx context.Context, in ListQuestionsInput) ([]*models.Question, error) {
	limit, offset := normalizePage(in.Limit, in.Offset)

	var (
		questions []*models.Question
		err       error
	)
	if tag := strings.TrimSpace(in.Tag); tag != "" {
		questions, err = s.repos.Questions.ListByTag(ctx, tag, limit, offset)
	} else {
		query := search.Parse(in.Search)
		observability.SearchQueries.WithLabelValues(query.Kind.String()).Inc()
		questions, err = s.repos.Questions.Search(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	return questions, nil
}

func (s *QuestionService) ListByUser(ctx context.Context, userID int) ([]*models.Question, error) {
	questions, err := s.repos.Questions.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return questions, nil
}

func (s *QuestionService) owned(ctx context.Context, id, requesterID int, action string) (*models.Question, error) {
	question, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if question.UserID != requesterID {
		return nil, models.NewForbiddenError("only the author can " + action + " this question")
	}
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, in UpdateQuestionInput) (*models.Question, error) {
	question, err := s.owned(ctx, in.ID, in.RequesterID, "edit")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if question.Title, err = requireText(*in.Title, "title", 300); err != nil {
			return nil, err
		}
	}
	if in.Body != nil {
		if question.Body, err = requireText(*in.Body, "body", 0); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		question.Description = strings.TrimSpace(*in.Description)
	}

	var tags []string
	if in.Tags != nil {
		if tags, err = normalizeTagNames(in.Tags); err != nil {
			return nil, err
		}
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Questions.Update(ctx, question); err != nil {
			return storageError(err, "Question", in.ID)
		}
		if in.Tags == nil {
			return nil
		}
		if err := tx.Tags.ClearQuestion(ctx, in.ID); err != nil {
			return models.NewInternalError(err)
		}
		return attachTags(ctx, tx, in.ID, tags)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.load(ctx, in.ID)
}

// Delete deactivates the question and releases its tags.
func (s *QuestionService) Delete(ctx context.Context, id, requesterID int) error {
	if _, err := s.owned(ctx, id, requesterID, "delete"); err != nil {
		return err
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Questions.Delete(ctx, id); err != nil {
			return storageError(err, "Question", id)
		}
		if err := tx.Tags.ClearQuestion(ctx, id); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate drops cached tag lists and statistics, whose usage counts and
// totals depend on questions.
func (s *QuestionService) invalidate(ctx context.Context) {
	s.cache.InvalidatePrefix(ctx, cache.TagsPrefix())
	s.cache.Invalidate(ctx, cache.StatsKey)
}
