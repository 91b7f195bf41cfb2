package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	ListByQuestion(ctx context.Context, questionID int) ([]*models.Comment, error)
	ListByAnswer(ctx context.Context, answerID int) ([]*models.Comment, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	return first[models.Comment](r.db.WithContext(ctx).Preload("User").Where("id = ?", id))
}

func (r *commentRepository) list(ctx context.Context, column string, id int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where(column+" = ?", id).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByQuestion(ctx context.Context, questionID int) ([]*models.Comment, error) {
	return r.list(ctx, "question_id", questionID)
}

func (r *commentRepository) ListByAnswer(ctx context.Context, answerID int) ([]*models.Comment, error) {
	return r.list(ctx, "answer_id", answerID)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID int) ([]*models.Comment, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("body", comment.Body)
	return requireRow(res)
}

func (r *commentRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.WithContext(ctx).Delete(&models.Comment{}, id))
}
