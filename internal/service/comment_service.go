package service

import (
	"context"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

const MaxCommentLength = 600

type CommentService struct {
	repos *repository.Repositories
}

func NewCommentService(repos *repository.Repositories) *CommentService {
	return &CommentService{repos: repos}
}

// CreateCommentInput targets exactly one of QuestionID or AnswerID.
type CreateCommentInput struct {
	AuthorID   int
	Body       string
	QuestionID *int
	AnswerID   *int
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.AuthorID <= 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	if (in.QuestionID == nil) == (in.AnswerID == nil) {
		return nil, models.NewValidationError("a comment must target exactly one of question_id or answer_id")
	}
	body, err := requireText(in.Body, "body", MaxCommentLength)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: in.AuthorID, Body: body}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if in.QuestionID != nil {
			q, err := tx.Questions.GetByID(ctx, *in.QuestionID)
			if err != nil {
				return models.NewInternalError(err)
			}
			if q == nil {
				return models.NewNotFoundError("Question", *in.QuestionID)
			}
			id := q.ID
			comment.QuestionID = &id
		} else {
			a, err := tx.Answers.GetByID(ctx, *in.AnswerID)
			if err != nil {
				return models.NewInternalError(err)
			}
			if a == nil {
				return models.NewNotFoundError("Answer", *in.AnswerID)
			}
			id := a.ID
			comment.AnswerID = &id
		}

		if err := tx.Comments.Create(ctx, comment); err != nil {
			return models.NewInternalError(err)
		}
		return storageError(tx.Users.UpdateReputation(ctx, in.AuthorID, models.CommentReputation), "User", in.AuthorID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, comment.ID)
}

func (s *CommentService) Get(ctx context.Context, id int) (*models.Comment, error) {
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

func (s *CommentService) ListByQuestion(ctx context.Context, questionID int) ([]*models.Comment, error) {
	return s.list(s.repos.Comments.ListByQuestion(ctx, questionID))
}

func (s *CommentService) ListByAnswer(ctx context.Context, answerID int) ([]*models.Comment, error) {
	return s.list(s.repos.Comments.ListByAnswer(ctx, answerID))
}

func (s *CommentService) ListByUser(ctx context.Context, userID int) ([]*models.Comment, error) {
	return s.list(s.repos.Comments.ListByUser(ctx, userID))
}

func (s *CommentService) list(comments []*models.Comment, err error) ([]*models.Comment, error) {
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) owned(ctx context.Context, id, requesterID int, action string) (*models.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requesterID {
		return nil, models.NewForbiddenError("only the author can " + action + " this comment")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, id, requesterID int, body string) (*models.Comment, error) {
	body, err := requireText(body, "body", MaxCommentLength)
	if err != nil {
		return nil, err
	}
	comment, err := s.owned(ctx, id, requesterID, "edit")
	if err != nil {
		return nil, err
	}

	comment.Body = body
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, storageError(err, "Comment", id)
	}
	return s.Get(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id, requesterID int) error {
	comment, err := s.owned(ctx, id, requesterID, "delete")
	if err != nil {
		return err
	}

	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Comments.Delete(ctx, id); err != nil {
			return storageError(err, "Comment", id)
		}
		return storageError(tx.Users.UpdateReputation(ctx, comment.UserID, -models.CommentReputation), "User", comment.UserID)
	})
}
