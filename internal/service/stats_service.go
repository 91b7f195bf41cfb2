package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emilythestrangee/queryhub/backend/internal/cache"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

const activeUserWindow = 30 * 24 * time.Hour

type StatsService struct {
	repos *repository.Repositories
	cache *cache.Cache
	now   func() time.Time
}

func NewStatsService(repos *repository.Repositories, c *cache.Cache) *StatsService {
	return &StatsService{repos: repos, cache: c, now: time.Now}
}

// Dashboard counts questions, answers, tags and users who joined in the last
// 30 days. When nobody joined in that window every user counts as active.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := s.cache.Aside(ctx, cache.StatsKey, &stats, cache.StatsTTL, func() error {
		return s.compute(ctx, &stats)
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

func (s *StatsService) compute(ctx context.Context, stats *models.DashboardStats) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalQuestions, err = s.repos.Questions.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAnswers, err = s.repos.Answers.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTags, err = s.repos.Tags.Count(gctx)
		return err
	})
	g.Go(func() error {
		recent, err := s.repos.Users.CountCreatedSince(gctx, s.now().UTC().Add(-activeUserWindow))
		if err != nil {
			return err
		}
		if recent == 0 {
			if recent, err = s.repos.Users.Count(gctx); err != nil {
				return err
			}
		}
		stats.ActiveUsers = recent
		return nil
	})

	return g.Wait()
}
