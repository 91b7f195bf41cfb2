package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

// AnswerRepository defines the interface for answer data operations
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id int) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID int) ([]*models.Answer, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Answer, error)
	Update(ctx context.Context, answer *models.Answer) error
	Delete(ctx context.Context, id int) error
	UpdateVoteCount(ctx context.Context, id int, delta int) error
	SetAccepted(ctx context.Context, questionID, answerID int) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Preload("User").
		Where("answers.is_active = ?", true)
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	answer.IsActive = true
	return r.db.WithContext(ctx).Omit("User").Create(answer).Error
}

func (r *answerRepository) GetByID(ctx context.Context, id int) (*models.Answer, error) {
	return first[models.Answer](r.active(ctx).Where("answers.id = ?", id))
}

// ListByQuestion orders the accepted answer first, then by votes, then oldest first.
func (r *answerRepository) ListByQuestion(ctx context.Context, questionID int) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.active(ctx).
		Where("answers.question_id = ?", questionID).
		Order("answers.is_accepted DESC, answers.vote_count DESC, answers.created_at ASC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) ListByUser(ctx context.Context, userID int) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.active(ctx).
		Where("answers.user_id = ?", userID).
		Order("answers.created_at DESC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) Update(ctx context.Context, answer *models.Answer) error {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ? AND is_active = ?", answer.ID, true).
		Update("body", answer.Body)
	return requireRow(res)
}

func (r *answerRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{"is_active": false, "is_accepted": false})
	return requireRow(res)
}

func (r *answerRepository) UpdateVoteCount(ctx context.Context, id int, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
	return requireRow(res)
}

// SetAccepted clears every accepted flag on the question's answers and sets
// it on answerID, atomically. The question row is locked first so concurrent
// accepts on one question run one after another. It reports false when
// answerID was already the accepted answer. Nested inside an outer
// transaction it becomes a savepoint.
func (r *answerRepository) SetAccepted(ctx context.Context, questionID, answerID int) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", questionID).
			First(&models.Question{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var target models.Answer
		err = tx.Where("id = ? AND question_id = ? AND is_active = ?", answerID, questionID, true).
			First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if target.IsAccepted {
			return nil
		}

		err = tx.Model(&models.Answer{}).
			Where("question_id = ? AND is_accepted = ?", questionID, true).
			UpdateColumn("is_accepted", false).Error
		if err != nil {
			return err
		}

		res := tx.Model(&models.Answer{}).
			Where("id = ?", answerID).
			UpdateColumn("is_accepted", true)
		if err := requireRow(res); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *answerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
