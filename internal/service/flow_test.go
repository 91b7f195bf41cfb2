package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/queryhub/backend/internal/auth"
	"github.com/emilythestrangee/queryhub/backend/internal/database"
	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

type testApp struct {
	repos     *repository.Repositories
	publisher *recordingPublisher
	auth      *AuthService
	questions *QuestionService
	answers   *AnswerService
	votes     *VoteService
	comments  *CommentService
	tags      *TagService
	stats     *StatsService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.New(db)
	pub := &recordingPublisher{}
	return &testApp{
		repos:     repos,
		publisher: pub,
		auth:      NewAuthService(repos.Users, auth.NewTokenManager("test-secret", time.Hour)),
		questions: NewQuestionService(repos, nil),
		answers:   NewAnswerService(repos, pub),
		votes:     NewVoteService(repos, pub),
		comments:  NewCommentService(repos),
		tags:      NewTagService(repos, nil),
		stats:     NewStatsService(repos, nil),
	}
}

func (a *testApp) register(t *testing.T, username string) *models.User {
	t.Helper()
	resp, err := a.auth.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Email:    username + "@queryhub.test",
		Password: "password123",
	})
	require.NoError(t, err)
	return a.user(t, resp.UserID)
}

func (a *testApp) user(t *testing.T, id int) *models.User {
	t.Helper()
	u, err := a.repos.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (a *testApp) ask(t *testing.T, author *models.User, title string, tags ...string) *models.Question {
	t.Helper()
	q, err := a.questions.Create(context.Background(), CreateQuestionInput{
		AuthorID: author.ID, Title: title, Body: "body of " + title, Tags: tags,
	})
	require.NoError(t, err)
	return q
}

func (a *testApp) answer(t *testing.T, q *models.Question, author *models.User) *models.Answer {
	t.Helper()
	ans, err := a.answers.Create(context.Background(), CreateAnswerInput{
		QuestionID: q.ID, AuthorID: author.ID, Body: "answer by " + author.Username,
	})
	require.NoError(t, err)
	return ans
}

func (a *testApp) questionVotes(t *testing.T, id int) int {
	t.Helper()
	q, err := a.repos.Questions.GetByID(context.Background(), id)
	require.NoError(t, err)
	return q.VoteCount
}

func TestFlow_VoteToggleAndFlipScenario(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	alice := app.register(t, "alice")
	bob := app.register(t, "bob")
	q := app.ask(t, alice, "How do goroutines work?")

	cast := func(dir models.VoteDirection) *VoteResult {
		res, err := app.votes.CastVote(ctx, CastVoteInput{
			VoterID: bob.ID, TargetKind: models.TargetQuestion, TargetID: q.ID, Direction: dir,
		})
		require.NoError(t, err)
		return res
	}

	res := cast(models.Upvote)
	assert.False(t, res.Removed)
	assert.Equal(t, 10, app.user(t, alice.ID).Reputation)
	assert.Equal(t, 1, app.questionVotes(t, q.ID))
	assert.Equal(t, 1, res.VoteCount)

	res = cast(models.Downvote)
	assert.False(t, res.Removed)
	assert.Equal(t, -2, app.user(t, alice.ID).Reputation)
	assert.Equal(t, -1, app.questionVotes(t, q.ID))

	res = cast(models.Downvote)
	assert.True(t, res.Removed)
	assert.Equal(t, 0, app.user(t, alice.ID).Reputation)
	assert.Equal(t, 0, app.questionVotes(t, q.ID))

	vote, err := app.votes.UserVote(ctx, bob.ID, models.TargetQuestion, q.ID)
	require.NoError(t, err)
	assert.Nil(t, vote)

	assert.Equal(t, 0, app.user(t, bob.ID).Reputation, "voting never changes the voter's reputation")
	assert.Len(t, app.publisher.all(), 3)
}

func TestFlow_VoteOnMissingQuestionIsNotFound(t *testing.T) {
	app := newTestApp(t)
	bob := app.register(t, "bob")

	_, err := app.votes.CastVote(context.Background(), CastVoteInput{
		VoterID: bob.ID, TargetKind: models.TargetQuestion, TargetID: 999, Direction: models.Upvote,
	})
	assertCode(t, err, models.CodeNotFound)
}

// After any sequence of votes, stored counts equal the sum of live votes and
// the author's reputation equals the sum of their live votes' reputation.
func TestFlow_VoteCountsMatchLiveVotes(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	author := app.register(t, "author")
	q := app.ask(t, author, "Counting votes")
	ans := app.answer(t, q, author)

	var voters []*models.User
	for _, name := range []string{"v1", "v2", "v3", "v4"} {
		voters = append(voters, app.register(t, name))
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 60; i++ {
		kind, target := models.TargetQuestion, q.ID
		if rng.Intn(2) == 0 {
			kind, target = models.TargetAnswer, ans.ID
		}
		dir := models.Upvote
		if rng.Intn(2) == 0 {
			dir = models.Downvote
		}
		_, err := app.votes.CastVote(ctx, CastVoteInput{
			VoterID: voters[rng.Intn(len(voters))].ID, TargetKind: kind, TargetID: target, Direction: dir,
		})
		require.NoError(t, err)
	}

	qSum, err := app.votes.VoteCount(ctx, models.TargetQuestion, q.ID)
	require.NoError(t, err)
	aSum, err := app.votes.VoteCount(ctx, models.TargetAnswer, ans.ID)
	require.NoError(t, err)

	assert.Equal(t, qSum, app.questionVotes(t, q.ID))
	storedAnswer, err := app.answers.Get(ctx, ans.ID)
	require.NoError(t, err)
	assert.Equal(t, aSum, storedAnswer.VoteCount)

	wantRep := models.AnswerReputation
	for _, v := range voters {
		live, err := app.votes.UserVotes(ctx, v.ID)
		require.NoError(t, err)
		for _, vote := range live {
			wantRep += vote.Direction.Reputation()
		}
	}
	assert.Equal(t, wantRep, app.user(t, author.ID).Reputation)
}

func TestFlow_AcceptAnswerScenario(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d := app.register(t, "dana")
	c := app.register(t, "carl")
	e := app.register(t, "erin")
	q := app.ask(t, d, "Which ORM?")
	x := app.answer(t, q, c)
	y := app.answer(t, q, e)
	assert.Equal(t, 1, app.user(t, c.ID).Reputation, "answering earns reputation")

	t.Run("only the asker may accept", func(t *testing.T) {
		_, err := app.answers.Accept(ctx, x.ID, c.ID)
		assertCode(t, err, models.CodeForbidden)
		_, err = app.answers.Accept(ctx, x.ID, e.ID)
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("missing answer", func(t *testing.T) {
		_, err := app.answers.Accept(ctx, 9999, d.ID)
		assertCode(t, err, models.CodeNotFound)
	})

	accepted, err := app.answers.Accept(ctx, x.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)
	assert.Equal(t, 16, app.user(t, c.ID).Reputation)

	_, err = app.answers.Accept(ctx, x.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, app.user(t, c.ID).Reputation, "re-accepting the accepted answer grants nothing")

	_, err = app.answers.Accept(ctx, y.ID, d.ID)
	require.NoError(t, err)

	list, err := app.answers.ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, y.ID, list[0].ID)
	assert.True(t, list[0].IsAccepted)
	assert.False(t, list[1].IsAccepted)
	assert.Equal(t, 16, app.user(t, c.ID).Reputation, "earlier acceptance is not reversed")
	assert.Equal(t, 16, app.user(t, e.ID).Reputation)

	var accepts int
	for _, ev := range app.publisher.all() {
		if _, ok := ev.(events.AnswerAccepted); ok {
			accepts++
		}
	}
	assert.Equal(t, 2, accepts)
}

func TestFlow_ConcurrentAcceptsLeaveOneAcceptedAnswer(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	asker := app.register(t, "asker")
	q := app.ask(t, asker, "Race?")
	var candidates []*models.Answer
	for _, name := range []string{"h1", "h2", "h3", "h4", "h5"} {
		candidates = append(candidates, app.answer(t, q, app.register(t, name)))
	}

	var wg sync.WaitGroup
	for _, a := range candidates {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := app.answers.Accept(ctx, id, asker.ID)
			assert.NoError(t, err)
		}(a.ID)
	}
	wg.Wait()

	list, err := app.answers.ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	n := 0
	for _, a := range list {
		if a.IsAccepted {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestFlow_ConcurrentAcceptsOfOneAnswerAwardOnce(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	asker := app.register(t, "asker")
	helper := app.register(t, "helper")
	q := app.ask(t, asker, "Twice?")
	ans := app.answer(t, q, helper)
	before := app.user(t, helper.ID).Reputation

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted, err := app.answers.Accept(ctx, ans.ID, asker.ID)
			if assert.NoError(t, err) {
				assert.True(t, accepted.IsAccepted)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, before+models.AcceptReputation, app.user(t, helper.ID).Reputation)

	n := 0
	for _, ev := range app.publisher.all() {
		if _, ok := ev.(events.AnswerAccepted); ok {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestFlow_AnswerLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	asker := app.register(t, "asker")
	helper := app.register(t, "helper")
	q := app.ask(t, asker, "Lifecycle")
	ans := app.answer(t, q, helper)

	_, err := app.answers.Update(ctx, ans.ID, asker.ID, "hijack")
	assertCode(t, err, models.CodeForbidden)

	updated, err := app.answers.Update(ctx, ans.ID, helper.ID, "  better answer ")
	require.NoError(t, err)
	assert.Equal(t, "better answer", updated.Body)

	_, err = app.answers.Create(ctx, CreateAnswerInput{QuestionID: 12345, AuthorID: helper.ID, Body: "x"})
	assertCode(t, err, models.CodeNotFound)

	loaded, err := app.questions.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.AnswerCount)
	assert.Len(t, loaded.Answers, 1)

	assertCode(t, app.answers.Delete(ctx, ans.ID, asker.ID), models.CodeForbidden)
	require.NoError(t, app.answers.Delete(ctx, ans.ID, helper.ID))
	assert.Equal(t, 0, app.user(t, helper.ID).Reputation)

	_, err = app.answers.Get(ctx, ans.ID)
	assertCode(t, err, models.CodeNotFound)
}
