package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/search"
)

// QuestionRepository defines the interface for question data operations
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id int) (*models.Question, error)
	List(ctx context.Context, limit, offset int) ([]*models.Question, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Question, error)
	ListByTag(ctx context.Context, tagName string, limit, offset int) ([]*models.Question, error)
	Search(ctx context.Context, query search.Query, limit, offset int) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id int) error
	IncrementViews(ctx context.Context, id int) error
	UpdateVoteCount(ctx context.Context, id int, delta int) error
	UpdateAnswerCount(ctx context.Context, id int, delta int) error
	Count(ctx context.Context) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Question{}).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Where("questions.is_active = ?", true)
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	question.IsActive = true
	return r.db.WithContext(ctx).Omit("Tags", "Answers", "User").Create(question).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id int) (*models.Question, error) {
	return first[models.Question](r.active(ctx).Where("questions.id = ?", id))
}

func (r *questionRepository) List(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	var questions []*models.Question
	err := r.active(ctx).
		Order("questions.created_at DESC").
		Scopes(paginate(limit, offset)).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Question, error) {
	var questions []*models.Question
	err := r.active(ctx).
		Where("questions.user_id = ?", userID).
		Order("questions.created_at DESC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) ListByTag(ctx context.Context, tagName string, limit, offset int) ([]*models.Question, error) {
	var questions []*models.Question
	err := r.active(ctx).
		Joins("JOIN question_tags qt ON qt.question_id = questions.id").
		Joins("JOIN tags t ON t.id = qt.tag_id").
		Where("LOWER(t.name) = ?", strings.ToLower(strings.TrimSpace(tagName))).
		Order("questions.vote_count DESC, questions.created_at DESC").
		Scopes(paginate(limit, offset)).
		Find(&questions).Error
	return questions, err
}

type rankedQuestion struct {
	ID        int
	MatchRank int
}

// Search evaluates a classified search string. Each matching question appears
// once, ordered by best match rank, then vote count, then recency.
func (r *questionRepository) Search(ctx context.Context, query search.Query, limit, offset int) ([]*models.Question, error) {
	plan := query.Plan()

	tx := r.db.WithContext(ctx).
		Table("questions AS q").
		Select("q.id AS id, MIN("+plan.Rank+") AS match_rank", plan.RankArgs...)
	for _, join := range plan.Joins {
		tx = tx.Joins(join)
	}
	tx = tx.Where("q.is_active = ?", true)
	if plan.Where != "" {
		tx = tx.Where(plan.Where, plan.Args...)
	}

	var ranked []rankedQuestion
	err := tx.Group("q.id, q.vote_count, q.created_at").
		Order("match_rank ASC, q.vote_count DESC, q.created_at DESC, q.id DESC").
		Scopes(paginate(limit, offset)).
		Scan(&ranked).Error
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return []*models.Question{}, nil
	}

	ids := make([]int, len(ranked))
	for i, row := range ranked {
		ids[i] = row.ID
	}

	var found []*models.Question
	if err := r.active(ctx).Where("questions.id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	questions := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND is_active = ?", question.ID, true).
		Updates(map[string]interface{}{
			"title":       question.Title,
			"description": question.Description,
			"body":        question.Body,
		})
	return requireRow(res)
}

// Delete deactivates the question; its rows stay for vote and answer history.
func (r *questionRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return requireRow(res)
}

func (r *questionRepository) IncrementViews(ctx context.Context, id int) error {
	return r.increment(ctx, id, "view_count", 1)
}

func (r *questionRepository) UpdateVoteCount(ctx context.Context, id int, delta int) error {
	return r.increment(ctx, id, "vote_count", delta)
}

func (r *questionRepository) UpdateAnswerCount(ctx context.Context, id int, delta int) error {
	return r.increment(ctx, id, "answer_count", delta)
}

func (r *questionRepository) increment(ctx context.Context, id int, column string, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	return requireRow(res)
}

func (r *questionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
