package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	GetByVoterAndTarget(ctx context.Context, userID int, kind models.TargetKind, targetID int) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateDirection(ctx context.Context, id int, direction models.VoteDirection) error
	Delete(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID int) ([]*models.Vote, error)
	SumForTarget(ctx context.Context, kind models.TargetKind, targetID int) (int, error)
	RecountTargets(ctx context.Context) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetByVoterAndTarget(ctx context.Context, userID int, kind models.TargetKind, targetID int) (*models.Vote, error) {
	return first[models.Vote](r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID))
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return translateWriteError(r.db.WithContext(ctx).Create(vote).Error)
}

func (r *voteRepository) UpdateDirection(ctx context.Context, id int, direction models.VoteDirection) error {
	res := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("id = ?", id).
		Update("vote_type", direction)
	return requireRow(res)
}

func (r *voteRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.WithContext(ctx).Delete(&models.Vote{}, id))
}

func (r *voteRepository) ListByUser(ctx context.Context, userID int) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&votes).Error
	return votes, err
}

// SumForTarget is the vote count derived from live votes.
func (r *voteRepository) SumForTarget(ctx context.Context, kind models.TargetKind, targetID int) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("COALESCE(SUM(vote_type), 0)").
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Scan(&sum).Error
	return sum, err
}

// RecountTargets rewrites every stored question and answer vote count from
// the live votes and reports how many rows were touched.
func (r *voteRepository) RecountTargets(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, target := range []struct {
			table string
			kind  models.TargetKind
		}{
			{"questions", models.TargetQuestion},
			{"answers", models.TargetAnswer},
		} {
			res := tx.Exec(
				"UPDATE "+target.table+" SET vote_count = COALESCE((SELECT SUM(v.vote_type) FROM votes v"+
					" WHERE v.target_kind = ? AND v.target_id = "+target.table+".id), 0)",
				target.kind,
			)
			if res.Error != nil {
				return res.Error
			}
			total += res.RowsAffected
		}
		return nil
	})
	return total, err
}
