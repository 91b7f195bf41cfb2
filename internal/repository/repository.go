// Package repository provides the gorm-backed storage collaborators for
// users, questions, answers, votes, tags and comments. Lookups of a single
// record return (nil, nil) when the record does not exist.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emilythestrangee/queryhub/backend/internal/database"
)

// ErrNotFound is returned by mutations whose target row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write would violate a unique constraint.
var ErrConflict = errors.New("conflict")

// Repositories bundles every repository over one database handle so that a
// service can run a multi-step operation inside a single transaction.
type Repositories struct {
	Users     UserRepository
	Questions QuestionRepository
	Answers   AnswerRepository
	Votes     VoteRepository
	Tags      TagRepository
	Comments  CommentRepository

	db *gorm.DB
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Questions: NewQuestionRepository(db),
		Answers:   NewAnswerRepository(db),
		Votes:     NewVoteRepository(db),
		Tags:      NewTagRepository(db),
		Comments:  NewCommentRepository(db),
		db:        db,
	}
}

// Transaction runs fn with repositories bound to a single transaction. A
// bundle assembled by hand without a database runs fn directly.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func translateWriteError(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func requireRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// paginate applies limit and offset; a non-positive limit means unbounded.
func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		}
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}
