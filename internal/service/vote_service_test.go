package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

func TestVoteTransition(t *testing.T) {
	t.Parallel()

	up := &models.Vote{Direction: models.Upvote}
	down := &models.Vote{Direction: models.Downvote}

	tests := []struct {
		name     string
		existing *models.Vote
		dir      models.VoteDirection
		want     transition
	}{
		{"new upvote", nil, models.Upvote, transition{action: "created", voteDt: 1, repDt: 10}},
		{"new downvote", nil, models.Downvote, transition{action: "created", voteDt: -1, repDt: -2}},
		{"toggle off upvote", up, models.Upvote, transition{action: "removed", voteDt: -1, repDt: -10, removed: true}},
		{"toggle off downvote", down, models.Downvote, transition{action: "removed", voteDt: 1, repDt: 2, removed: true}},
		{"flip up to down", up, models.Downvote, transition{action: "flipped", voteDt: -2, repDt: -12}},
		{"flip down to up", down, models.Upvote, transition{action: "flipped", voteDt: 2, repDt: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, voteTransition(tt.existing, tt.dir))
		})
	}
}

func TestVoteTransition_CreateThenToggleIsNeutral(t *testing.T) {
	t.Parallel()

	for _, dir := range []models.VoteDirection{models.Upvote, models.Downvote} {
		create := voteTransition(nil, dir)
		remove := voteTransition(&models.Vote{Direction: dir}, dir)
		assert.Zero(t, create.voteDt+remove.voteDt)
		assert.Zero(t, create.repDt+remove.repDt)

		flip := voteTransition(&models.Vote{Direction: dir}, dir.Opposite())
		back := voteTransition(&models.Vote{Direction: dir.Opposite()}, dir)
		assert.Zero(t, flip.voteDt+back.voteDt)
		assert.Zero(t, flip.repDt+back.repDt)
	}
}

func TestVoteService_CastVote_Validation(t *testing.T) {
	t.Parallel()

	svc := NewVoteService(&repository.Repositories{Votes: noopVoteRepo()}, nil)
	ctx := context.Background()

	t.Run("anonymous voter", func(t *testing.T) {
		_, err := svc.CastVote(ctx, CastVoteInput{TargetKind: models.TargetQuestion, TargetID: 1, Direction: models.Upvote})
		assertCode(t, err, models.CodeUnauthorized)
	})

	t.Run("unknown target kind", func(t *testing.T) {
		_, err := svc.CastVote(ctx, CastVoteInput{VoterID: 1, TargetKind: "comment", TargetID: 1, Direction: models.Upvote})
		assertCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("zero direction", func(t *testing.T) {
		_, err := svc.CastVote(ctx, CastVoteInput{VoterID: 1, TargetKind: models.TargetAnswer, TargetID: 1})
		assertCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("missing target id", func(t *testing.T) {
		_, err := svc.CastVote(ctx, CastVoteInput{VoterID: 1, TargetKind: models.TargetAnswer, Direction: models.Downvote})
		assertCode(t, err, models.CodeInvalidArgument)
	})
}

func TestVoteService_CastVote_MissingAnswerWithoutPriorVote(t *testing.T) {
	t.Parallel()

	votes := noopVoteRepo()
	created := false
	votes.createFn = func(context.Context, *models.Vote) error {
		created = true
		return nil
	}
	answers := &answerRepoStub{
		getByIDFn: func(context.Context, int) (*models.Answer, error) { return nil, nil },
	}
	svc := NewVoteService(&repository.Repositories{Votes: votes, Answers: answers}, nil)

	_, err := svc.CastVote(context.Background(), CastVoteInput{
		VoterID: 2, TargetKind: models.TargetAnswer, TargetID: 404, Direction: models.Upvote,
	})
	assertCode(t, err, models.CodeNotFound)
	assert.False(t, created)
}

func TestVoteService_CastVote_TargetVanishedSkipsReputation(t *testing.T) {
	t.Parallel()

	votes := noopVoteRepo()
	votes.getFn = func(context.Context, int, models.TargetKind, int) (*models.Vote, error) {
		return &models.Vote{ID: 5, UserID: 2, TargetKind: models.TargetQuestion, TargetID: 9, Direction: models.Upvote}, nil
	}
	deleted := 0
	votes.deleteFn = func(_ context.Context, id int) error {
		deleted = id
		return nil
	}
	questions := &questionRepoStub{
		getByIDFn:     func(context.Context, int) (*models.Question, error) { return nil, nil },
		updateVotesFn: func(context.Context, int, int) error { return repository.ErrNotFound },
	}
	users := &userRepoStub{}
	pub := &recordingPublisher{}
	svc := NewVoteService(&repository.Repositories{Votes: votes, Questions: questions, Users: users}, pub)

	res, err := svc.CastVote(context.Background(), CastVoteInput{
		VoterID: 2, TargetKind: models.TargetQuestion, TargetID: 9, Direction: models.Upvote,
	})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Nil(t, res.Direction)
	assert.Equal(t, 5, deleted)
	assert.Empty(t, users.reputation)
	require.Len(t, pub.all(), 1)
}

func TestVoteService_CastVote_FlipUpdatesAuthorReputation(t *testing.T) {
	t.Parallel()

	votes := noopVoteRepo()
	votes.getFn = func(context.Context, int, models.TargetKind, int) (*models.Vote, error) {
		return &models.Vote{ID: 8, Direction: models.Upvote}, nil
	}
	var newDir models.VoteDirection
	votes.updateFn = func(_ context.Context, _ int, d models.VoteDirection) error {
		newDir = d
		return nil
	}
	var countDelta int
	answers := &answerRepoStub{
		getByIDFn: func(_ context.Context, id int) (*models.Answer, error) {
			return &models.Answer{ID: id, UserID: 77, VoteCount: -1}, nil
		},
		updateVotesFn: func(_ context.Context, _ int, delta int) error {
			countDelta = delta
			return nil
		},
	}
	users := &userRepoStub{}
	pub := &recordingPublisher{}
	svc := NewVoteService(&repository.Repositories{Votes: votes, Answers: answers, Users: users}, pub)

	res, err := svc.CastVote(context.Background(), CastVoteInput{
		VoterID: 3, TargetKind: models.TargetAnswer, TargetID: 12, Direction: models.Downvote,
	})
	require.NoError(t, err)

	assert.Equal(t, models.Downvote, newDir)
	assert.Equal(t, -2, countDelta)
	assert.Equal(t, -12, users.reputation[77])
	assert.False(t, res.Removed)
	require.NotNil(t, res.Direction)
	assert.Equal(t, models.Downvote, *res.Direction)
	assert.Equal(t, 8, res.VoteID)
	assert.Equal(t, -1, res.VoteCount)

	evs := pub.all()
	require.Len(t, evs, 1)
	cast, ok := evs[0].(events.VoteCast)
	require.True(t, ok)
	assert.Equal(t, -12, cast.ReputationDelta)
	assert.Equal(t, "answer", cast.TargetKind)
}

func TestVoteService_CastVote_DuplicateInsertIsConflict(t *testing.T) {
	t.Parallel()

	votes := noopVoteRepo()
	votes.createFn = func(context.Context, *models.Vote) error { return repository.ErrConflict }
	questions := &questionRepoStub{
		getByIDFn: func(_ context.Context, id int) (*models.Question, error) {
			return &models.Question{ID: id, UserID: 1}, nil
		},
	}
	svc := NewVoteService(&repository.Repositories{Votes: votes, Questions: questions}, nil)

	_, err := svc.CastVote(context.Background(), CastVoteInput{
		VoterID: 2, TargetKind: models.TargetQuestion, TargetID: 1, Direction: models.Upvote,
	})
	assertCode(t, err, models.CodeConflict)
}

// Not parallel: reads a package-level counter.
func TestVoteService_CastVote_ReputationMetricFollowsAppliedUpdates(t *testing.T) {
	votes := noopVoteRepo()
	answers := &answerRepoStub{
		getByIDFn: func(_ context.Context, id int) (*models.Answer, error) {
			return &models.Answer{ID: id, UserID: 7, VoteCount: 1}, nil
		},
		updateVotesFn: func(context.Context, int, int) error { return nil },
	}
	counter := observability.ReputationDelta.WithLabelValues("vote")

	t.Run("author missing", func(t *testing.T) {
		users := &userRepoStub{updateRepFn: func(context.Context, int, int) error { return repository.ErrNotFound }}
		svc := NewVoteService(&repository.Repositories{Votes: votes, Answers: answers, Users: users}, nil)

		before := testutil.ToFloat64(counter)
		_, err := svc.CastVote(context.Background(), CastVoteInput{
			VoterID: 2, TargetKind: models.TargetAnswer, TargetID: 3, Direction: models.Upvote,
		})
		require.NoError(t, err)
		assert.Equal(t, before, testutil.ToFloat64(counter))
	})

	t.Run("author updated", func(t *testing.T) {
		users := &userRepoStub{}
		svc := NewVoteService(&repository.Repositories{Votes: votes, Answers: answers, Users: users}, nil)

		before := testutil.ToFloat64(counter)
		_, err := svc.CastVote(context.Background(), CastVoteInput{
			VoterID: 2, TargetKind: models.TargetAnswer, TargetID: 3, Direction: models.Upvote,
		})
		require.NoError(t, err)
		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})
}
