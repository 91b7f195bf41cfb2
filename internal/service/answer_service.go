package service

import (
	"context"
	"time"

	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

type AnswerService struct {
	repos     *repository.Repositories
	publisher events.Publisher
}

func NewAnswerService(repos *repository.Repositories, publisher events.Publisher) *AnswerService {
	return &AnswerService{repos: repos, publisher: events.Guard(publisher)}
}

type CreateAnswerInput struct {
	QuestionID int
	AuthorID   int
	Body       string
}

func (s *AnswerService) Create(ctx context.Context, in CreateAnswerInput) (*models.Answer, error) {
	if in.AuthorID <= 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	body, err := requireText(in.Body, "body", 0)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{QuestionID: in.QuestionID, UserID: in.AuthorID, Body: body}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		question, err := tx.Questions.GetByID(ctx, in.QuestionID)
		if err != nil {
			return models.NewInternalError(err)
		}
		if question == nil {
			return models.NewNotFoundError("Question", in.QuestionID)
		}

		if err := tx.Answers.Create(ctx, answer); err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Questions.UpdateAnswerCount(ctx, in.QuestionID, 1); err != nil {
			return storageError(err, "Question", in.QuestionID)
		}
		return storageError(tx.Users.UpdateReputation(ctx, in.AuthorID, models.AnswerReputation), "User", in.AuthorID)
	})
	if err != nil {
		return nil, err
	}
	observability.ReputationDelta.WithLabelValues("answer_created").Inc()

	return s.Get(ctx, answer.ID)
}

func (s *AnswerService) Get(ctx context.Context, id int) (*models.Answer, error) {
	answer, err := s.repos.Answers.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if answer == nil {
		return nil, models.NewNotFoundError("Answer", id)
	}
	return answer, nil
}

func (s *AnswerService) ListByQuestion(ctx context.Context, questionID int) ([]*models.Answer, error) {
	answers, err := s.repos.Answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

func (s *AnswerService) ListByUser(ctx context.Context, userID int) ([]*models.Answer, error) {
	answers, err := s.repos.Answers.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

// owned loads an answer and checks that requesterID wrote it.
func (s *AnswerService) owned(ctx context.Context, id, requesterID int, action string) (*models.Answer, error) {
	answer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if answer.UserID != requesterID {
		return nil, models.NewForbiddenError("only the author can " + action + " this answer")
	}
	return answer, nil
}

func (s *AnswerService) Update(ctx context.Context, id, requesterID int, body string) (*models.Answer, error) {
	body, err := requireText(body, "body", 0)
	if err != nil {
		return nil, err
	}
	answer, err := s.owned(ctx, id, requesterID, "edit")
	if err != nil {
		return nil, err
	}

	answer.Body = body
	if err := s.repos.Answers.Update(ctx, answer); err != nil {
		return nil, storageError(err, "Answer", id)
	}
	return s.Get(ctx, id)
}

func (s *AnswerService) Delete(ctx context.Context, id, requesterID int) error {
	answer, err := s.owned(ctx, id, requesterID, "delete")
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Answers.Delete(ctx, id); err != nil {
			return storageError(err, "Answer", id)
		}
		if err := tx.Questions.UpdateAnswerCount(ctx, answer.QuestionID, -1); err != nil {
			return storageError(err, "Question", answer.QuestionID)
		}
		return storageError(tx.Users.UpdateReputation(ctx, answer.UserID, -models.AnswerReputation), "User", answer.UserID)
	})
	if err == nil {
		observability.ReputationDelta.WithLabelValues("answer_deleted").Inc()
	}
	return err
}

// Accept marks answerID as its question's accepted answer. Only the
// question's author may accept. Any previously accepted answer on the same
// question is cleared in the same transaction, and the answer's author gains
// AcceptReputation. Reputation from an earlier acceptance is kept when a
// different answer is accepted later. Accepting the answer that is already
// accepted changes nothing.
func (s *AnswerService) Accept(ctx context.Context, answerID, requesterID int) (*models.Answer, error) {
	ctx, span := observability.Tracer.Start(ctx, "AnswerService.Accept")
	defer span.End()

	answer, err := s.Get(ctx, answerID)
	if err != nil {
		return nil, err
	}

	question, err := s.repos.Questions.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if question == nil {
		return nil, models.NewNotFoundError("Question", answer.QuestionID)
	}
	if question.UserID != requesterID {
		return nil, models.NewForbiddenError("only the question author can accept an answer")
	}
	if answer.IsAccepted {
		return answer, nil
	}

	changed := false
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		changed, err = tx.Answers.SetAccepted(ctx, question.ID, answer.ID)
		if err != nil {
			return storageError(err, "Answer", answer.ID)
		}
		if !changed {
			return nil
		}
		return storageError(tx.Users.UpdateReputation(ctx, answer.UserID, models.AcceptReputation), "User", answer.UserID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if changed {
		observability.AnswersAccepted.Inc()
		observability.ReputationDelta.WithLabelValues("accepted").Inc()
		publish(ctx, s.publisher, events.AnswerAccepted{
			AnswerID:       answer.ID,
			QuestionID:     question.ID,
			AnswerAuthorID: answer.UserID,
			AcceptedBy:     requesterID,
			OccurredAt:     time.Now().UTC(),
		})
	}

	return s.Get(ctx, answer.ID)
}
