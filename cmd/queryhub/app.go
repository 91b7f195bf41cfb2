package main

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/queryhub/backend/internal/auth"
	"github.com/emilythestrangee/queryhub/backend/internal/cache"
	"github.com/emilythestrangee/queryhub/backend/internal/config"
	"github.com/emilythestrangee/queryhub/backend/internal/database"
	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type app struct {
	cfg       *config.Config
	db        database.Service
	cache     *cache.Cache
	publisher events.Publisher
	svc       *service.Services
	shutdown  func(context.Context) error
}

// bootstrap loads configuration and connects every collaborator. Redis and
// RabbitMQ are optional and degrade to no-ops when unset or unreachable.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.Setup(cfg.Env, cfg.LogLevel)

	shutdown, err := observability.InitTracing(cfg.TracingEnabled)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := cache.Connect(ctx, cfg.RedisURL)
	publisher := events.NewPublisher(cfg.AMQPURL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())

	return &app{
		cfg:       cfg,
		db:        db,
		cache:     c,
		publisher: publisher,
		svc:       service.New(repository.New(db.GetDB()), c, publisher, tokens),
		shutdown:  shutdown,
	}, nil
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		observability.Logger.Warn("closing event publisher", "error", err)
	}
	if err := a.cache.Close(); err != nil {
		observability.Logger.Warn("closing cache", "error", err)
	}
	if err := a.db.Close(); err != nil {
		observability.Logger.Warn("closing database", "error", err)
	}
	if err := a.shutdown(context.Background()); err != nil {
		observability.Logger.Warn("flushing traces", "error", err)
	}
}
