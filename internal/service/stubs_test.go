package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

// The stubs embed the repository interface so only the methods a test
// exercises need a function field; anything else panics if called.

type voteRepoStub struct {
	repository.VoteRepository
	getFn    func(context.Context, int, models.TargetKind, int) (*models.Vote, error)
	createFn func(context.Context, *models.Vote) error
	updateFn func(context.Context, int, models.VoteDirection) error
	deleteFn func(context.Context, int) error
}

func (s *voteRepoStub) GetByVoterAndTarget(ctx context.Context, userID int, kind models.TargetKind, id int) (*models.Vote, error) {
	return s.getFn(ctx, userID, kind, id)
}
func (s *voteRepoStub) Create(ctx context.Context, v *models.Vote) error { return s.createFn(ctx, v) }
func (s *voteRepoStub) UpdateDirection(ctx context.Context, id int, d models.VoteDirection) error {
	return s.updateFn(ctx, id, d)
}
func (s *voteRepoStub) Delete(ctx context.Context, id int) error { return s.deleteFn(ctx, id) }

func noopVoteRepo() *voteRepoStub {
	return &voteRepoStub{
		getFn:    func(context.Context, int, models.TargetKind, int) (*models.Vote, error) { return nil, nil },
		createFn: func(_ context.Context, v *models.Vote) error { v.ID = 1; return nil },
		updateFn: func(context.Context, int, models.VoteDirection) error { return nil },
		deleteFn: func(context.Context, int) error { return nil },
	}
}

type questionRepoStub struct {
	repository.QuestionRepository
	getByIDFn     func(context.Context, int) (*models.Question, error)
	updateVotesFn func(context.Context, int, int) error
}

func (s *questionRepoStub) GetByID(ctx context.Context, id int) (*models.Question, error) {
	return s.getByIDFn(ctx, id)
}
func (s *questionRepoStub) UpdateVoteCount(ctx context.Context, id, delta int) error {
	return s.updateVotesFn(ctx, id, delta)
}

type answerRepoStub struct {
	repository.AnswerRepository
	getByIDFn     func(context.Context, int) (*models.Answer, error)
	updateVotesFn func(context.Context, int, int) error
}

func (s *answerRepoStub) GetByID(ctx context.Context, id int) (*models.Answer, error) {
	return s.getByIDFn(ctx, id)
}
func (s *answerRepoStub) UpdateVoteCount(ctx context.Context, id, delta int) error {
	return s.updateVotesFn(ctx, id, delta)
}

type userRepoStub struct {
	repository.UserRepository
	mu          sync.Mutex
	reputation  map[int]int
	updateRepFn func(context.Context, int, int) error
}

func (s *userRepoStub) UpdateReputation(ctx context.Context, id, delta int) error {
	if s.updateRepFn != nil {
		return s.updateRepFn(ctx, id, delta)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reputation == nil {
		s.reputation = map[int]int{}
	}
	s.reputation[id] += delta
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code, "unexpected error: %v", err)
}
