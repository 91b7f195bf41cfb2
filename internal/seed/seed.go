// Package seed fills a database with demo users, questions, answers and
// votes. Everything goes through the services so counters and reputation
// stay consistent with what the API would produce.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

var tagPool = []string{
	"go", "postgresql", "docker", "kubernetes", "redis", "rabbitmq",
	"javascript", "typescript", "python", "sql", "c#", "asp.net-core",
}

type Options struct {
	Users     int
	Questions int
	// Seed makes runs reproducible; zero picks a random seed.
	Seed int64
}

type Summary struct {
	Users     int `json:"users"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
	Votes     int `json:"votes"`
	Accepted  int `json:"accepted"`
	Comments  int `json:"comments"`
}

type Seeder struct {
	svc  *service.Services
	fake *gofakeit.Faker
}

func New(svc *service.Services, seed int64) *Seeder {
	return &Seeder{svc: svc, fake: gofakeit.New(seed)}
}

// Run creates opts.Users accounts and opts.Questions questions, then answers,
// comments on and votes for them at random.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", opts.Users)
	}
	if opts.Seed != 0 {
		s.fake = gofakeit.New(opts.Seed)
	}
	sum := &Summary{}

	users := make([]int, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", s.fake.Username(), i)
		resp, err := s.svc.Auth.Register(ctx, models.RegisterRequest{
			Username: username,
			Email:    fmt.Sprintf("%s@queryhub.dev", username),
			Password: DemoPassword,
			Name:     s.fake.Name(),
		})
		if err != nil {
			return sum, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, resp.UserID)
		sum.Users++
	}

	for i := 0; i < opts.Questions; i++ {
		asker := users[s.fake.Number(0, len(users)-1)]
		question, err := s.svc.Questions.Create(ctx, service.CreateQuestionInput{
			AuthorID:    asker,
			Title:       s.fake.Question(),
			Description: s.fake.Sentence(12),
			Body:        s.fake.Paragraph(2, 4, 14, "\n\n"),
			Tags:        s.pickTags(),
		})
		if err != nil {
			return sum, fmt.Errorf("seeding question %d: %w", i, err)
		}
		sum.Questions++

		if err := s.discuss(ctx, question, asker, users, sum); err != nil {
			return sum, err
		}
	}

	observability.Logger.Info("seed complete",
		"users", sum.Users, "questions", sum.Questions, "answers", sum.Answers,
		"votes", sum.Votes, "accepted", sum.Accepted, "comments", sum.Comments)
	return sum, nil
}

func (s *Seeder) pickTags() []string {
	n := s.fake.Number(1, 3)
	order := indexes(len(tagPool))
	s.fake.ShuffleInts(order)

	out := make([]string, 0, n)
	for _, i := range order[:n] {
		out = append(out, tagPool[i])
	}
	return out
}

// discuss adds answers, a comment and votes to a question, and sometimes
// accepts one of the answers.
func (s *Seeder) discuss(ctx context.Context, q *models.Question, asker int, users []int, sum *Summary) error {
	var answers []*models.Answer
	for j, n := 0, s.fake.Number(0, 3); j < n; j++ {
		author := s.other(users, asker)
		a, err := s.svc.Answers.Create(ctx, service.CreateAnswerInput{
			QuestionID: q.ID,
			AuthorID:   author,
			Body:       s.fake.Paragraph(1, 3, 12, "\n\n"),
		})
		if err != nil {
			return fmt.Errorf("seeding answer on question %d: %w", q.ID, err)
		}
		answers = append(answers, a)
		sum.Answers++
	}

	if s.fake.Bool() {
		questionID := q.ID
		if _, err := s.svc.Comments.Create(ctx, service.CreateCommentInput{
			AuthorID:   s.other(users, asker),
			Body:       s.fake.Sentence(10),
			QuestionID: &questionID,
		}); err != nil {
			return fmt.Errorf("seeding comment on question %d: %w", q.ID, err)
		}
		sum.Comments++
	}

	for _, voter := range users {
		if voter == asker || s.fake.Number(0, 2) != 0 {
			continue
		}
		if err := s.vote(ctx, voter, models.TargetQuestion, q.ID); err != nil {
			return err
		}
		sum.Votes++
		for _, a := range answers {
			if a.UserID == voter || !s.fake.Bool() {
				continue
			}
			if err := s.vote(ctx, voter, models.TargetAnswer, a.ID); err != nil {
				return err
			}
			sum.Votes++
		}
	}

	if len(answers) > 0 && s.fake.Bool() {
		pick := answers[s.fake.Number(0, len(answers)-1)]
		if _, err := s.svc.Answers.Accept(ctx, pick.ID, asker); err != nil {
			return fmt.Errorf("seeding acceptance of answer %d: %w", pick.ID, err)
		}
		sum.Accepted++
	}
	return nil
}

// vote casts a mostly positive vote.
func (s *Seeder) vote(ctx context.Context, voter int, kind models.TargetKind, id int) error {
	dir := models.Upvote
	if s.fake.Number(1, 5) == 1 {
		dir = models.Downvote
	}
	_, err := s.svc.Votes.CastVote(ctx, service.CastVoteInput{
		VoterID: voter, TargetKind: kind, TargetID: id, Direction: dir,
	})
	if err != nil {
		return fmt.Errorf("seeding %s vote on %s %d: %w", dir, kind, id, err)
	}
	return nil
}

func (s *Seeder) other(users []int, not int) int {
	for {
		if u := users[s.fake.Number(0, len(users)-1)]; u != not {
			return u
		}
	}
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
