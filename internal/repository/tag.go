package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/search"
)

const usageCountSelect = "tags.*, (SELECT COUNT(*) FROM question_tags qt WHERE qt.tag_id = tags.id) AS usage_count"

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id int) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context, term string) ([]*models.Tag, error)
	ListByQuestion(ctx context.Context, questionID int) ([]*models.Tag, error)
	Popular(ctx context.Context, limit int) ([]*models.Tag, error)
	QuestionCount(ctx context.Context, tagID int) (int64, error)
	AddToQuestion(ctx context.Context, questionID, tagID int) error
	ClearQuestion(ctx context.Context, questionID int) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) withUsage(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Tag{}).Select(usageCountSelect)
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.ToLower(strings.TrimSpace(tag.Name))
	return translateWriteError(r.db.WithContext(ctx).Create(tag).Error)
}

func (r *tagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	return first[models.Tag](r.withUsage(ctx).Where("tags.id = ?", id))
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return first[models.Tag](r.withUsage(ctx).
		Where("LOWER(tags.name) = ?", strings.ToLower(strings.TrimSpace(name))))
}

func (r *tagRepository) List(ctx context.Context, term string) ([]*models.Tag, error) {
	q := r.withUsage(ctx).Order("tags.name ASC")
	if s := strings.ToLower(strings.TrimSpace(term)); s != "" {
		q = q.Where("LOWER(tags.name) LIKE ?"+search.LikeEscape, search.ContainsPattern(s))
	}

	var tags []*models.Tag
	err := q.Find(&tags).Error
	return tags, err
}

func (r *tagRepository) ListByQuestion(ctx context.Context, questionID int) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.withUsage(ctx).
		Joins("JOIN question_tags link ON link.tag_id = tags.id").
		Where("link.question_id = ?", questionID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Popular(ctx context.Context, limit int) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.withUsage(ctx).
		Order("usage_count DESC, tags.name ASC").
		Scopes(paginate(limit, 0)).
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) QuestionCount(ctx context.Context, tagID int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.QuestionTag{}).Where("tag_id = ?", tagID).Count(&n).Error
	return n, err
}

// AddToQuestion links a tag to a question; linking twice is a no-op.
func (r *tagRepository) AddToQuestion(ctx context.Context, questionID, tagID int) error {
	link := models.QuestionTag{QuestionID: questionID, TagID: tagID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (r *tagRepository) ClearQuestion(ctx context.Context, questionID int) error {
	return r.db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&models.QuestionTag{}).Error
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.ToLower(strings.TrimSpace(tag.Name))
	res := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ?", tag.ID).
		Updates(map[string]interface{}{"name": tag.Name, "description": tag.Description})
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	return requireRow(res)
}

func (r *tagRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.WithContext(ctx).Delete(&models.Tag{}, id))
}

func (r *tagRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&n).Error
	return n, err
}
