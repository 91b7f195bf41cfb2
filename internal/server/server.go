package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/queryhub/backend/internal/config"
	"github.com/emilythestrangee/queryhub/backend/internal/database"
	"github.com/emilythestrangee/queryhub/backend/internal/handlers"
	"github.com/emilythestrangee/queryhub/backend/internal/middleware"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
	authn   middleware.Authenticator
	limiter *middleware.RateLimiter
}

func newServer(cfg *config.Config, db database.Service, svc *service.Services) *Server {
	return &Server{
		cfg:     cfg,
		db:      db,
		handler: handlers.NewHandler(svc),
		authn:   svc.Auth,
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// NewServer creates and configures a new server
func NewServer(cfg *config.Config, db database.Service, svc *service.Services) (*http.Server, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := newServer(cfg, db, svc).RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	observability.Logger.Info("server configured", "port", cfg.Port, "env", cfg.Env)
	return server, nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	origins := s.cfg.Origins()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.handler
	api := r.Group("/api")
	{
		auth := middleware.AuthMiddleware(s.authn)
		// Writes are limited per user, so the limiter runs after auth.
		write := []gin.HandlerFunc{auth, middleware.RateLimit(s.limiter)}

		authGroup := api.Group("/auth")
		authGroup.POST("/register", middleware.RateLimit(s.limiter), h.Auth.Register)
		authGroup.POST("/login", middleware.RateLimit(s.limiter), h.Auth.Login)
		authGroup.GET("/me", auth, h.Auth.GetMe)

		questions := api.Group("/questions")
		questions.GET("", h.Question.GetQuestions)
		questions.GET("/:id", h.Question.GetQuestion)
		questions.GET("/user/:userId", h.Question.GetUserQuestions)
		questions.POST("", append(write, h.Question.CreateQuestion)...)
		questions.PUT("/:id", append(write, h.Question.UpdateQuestion)...)
		questions.DELETE("/:id", append(write, h.Question.DeleteQuestion)...)

		answers := api.Group("/answers")
		answers.GET("/:id", h.Answer.GetAnswer)
		answers.GET("/question/:questionId", h.Answer.GetQuestionAnswers)
		answers.GET("/user/:userId", h.Answer.GetUserAnswers)
		answers.POST("", append(write, h.Answer.CreateAnswer)...)
		answers.PUT("/:id", append(write, h.Answer.UpdateAnswer)...)
		answers.DELETE("/:id", append(write, h.Answer.DeleteAnswer)...)
		answers.POST("/:id/accept", append(write, h.Answer.AcceptAnswer)...)

		comments := api.Group("/comments")
		comments.GET("/:id", h.Comment.GetComment)
		comments.GET("/question/:questionId", h.Comment.GetQuestionComments)
		comments.GET("/answer/:answerId", h.Comment.GetAnswerComments)
		comments.GET("/user/:userId", h.Comment.GetUserComments)
		comments.POST("", append(write, h.Comment.CreateComment)...)
		comments.PUT("/:id", append(write, h.Comment.UpdateComment)...)
		comments.DELETE("/:id", append(write, h.Comment.DeleteComment)...)

		votes := api.Group("/votes")
		votes.POST("/question", append(write, h.Vote.VoteQuestion)...)
		votes.POST("/answer", append(write, h.Vote.VoteAnswer)...)
		votes.GET("/user", auth, h.Vote.GetUserVotes)
		votes.GET("/question/:questionId/count", h.Vote.GetQuestionVoteCount)
		votes.GET("/answer/:answerId/count", h.Vote.GetAnswerVoteCount)
		votes.GET("/question/:questionId/user", auth, h.Vote.GetUserQuestionVote)
		votes.GET("/answer/:answerId/user", auth, h.Vote.GetUserAnswerVote)

		tags := api.Group("/tags")
		tags.GET("", h.Tag.GetTags)
		tags.GET("/popular", h.Tag.GetPopularTags)
		tags.GET("/name/:name", h.Tag.GetTagByName)
		tags.GET("/question/:questionId", h.Tag.GetQuestionTags)
		tags.GET("/:id", h.Tag.GetTag)
		tags.GET("/:id/question-count", h.Tag.GetTagQuestionCount)
		tags.POST("", append(write, h.Tag.CreateTag)...)
		tags.PUT("/:id", append(write, h.Tag.UpdateTag)...)
		tags.DELETE("/:id", append(write, h.Tag.DeleteTag)...)

		api.GET("/users/:id", h.User.GetUserProfile)
		api.GET("/statistics/dashboard", h.Stats.Dashboard)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats := s.db.Health(ctx)
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": stats["status"], "database": stats})
}
