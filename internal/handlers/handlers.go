package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/queryhub/backend/internal/middleware"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Comment  *CommentHandler
	Vote     *VoteHandler
	Tag      *TagHandler
	User     *UserHandler
	Stats    *StatsHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc *service.Services) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, svc.Users),
		Question: NewQuestionHandler(svc.Questions),
		Answer:   NewAnswerHandler(svc.Answers),
		Comment:  NewCommentHandler(svc.Comments),
		Vote:     NewVoteHandler(svc.Votes),
		Tag:      NewTagHandler(svc.Tags),
		User:     NewUserHandler(svc.Users),
		Stats:    NewStatsHandler(svc.Stats),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// requireUser writes 401 and reports false when the request is anonymous.
func requireUser(c *gin.Context) (int, bool) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "User not authenticated", Code: models.CodeUnauthorized})
	}
	return userID, ok
}

// paramID parses a positive integer path parameter, writing 400 on failure.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid " + name, Code: models.CodeInvalidArgument})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: models.CodeInvalidArgument})
		return false
	}
	return true
}

var statusByCode = map[string]int{
	models.CodeNotFound:        http.StatusNotFound,
	models.CodeForbidden:       http.StatusForbidden,
	models.CodeInvalidArgument: http.StatusBadRequest,
	models.CodeConflict:        http.StatusConflict,
	models.CodeUnauthorized:    http.StatusUnauthorized,
	models.CodeInternal:        http.StatusInternalServerError,
}

// respondError writes err as an ErrorResponse. Errors that are not AppErrors
// are reported as internal without leaking their message.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		observability.FromContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(), "error", err)
	}

	c.JSON(status, models.ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
