package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) GetQuestionComments(c *gin.Context) {
	h.list(c, "questionId", h.comments.ListByQuestion)
}

func (h *CommentHandler) GetAnswerComments(c *gin.Context) {
	h.list(c, "answerId", h.comments.ListByAnswer)
}

func (h *CommentHandler) GetUserComments(c *gin.Context) {
	h.list(c, "userId", h.comments.ListByUser)
}

func (h *CommentHandler) list(c *gin.Context, param string, fetch func(context.Context, int) ([]*models.Comment, error)) {
	id, ok := paramID(c, param)
	if !ok {
		return
	}

	comments, err := fetch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(comments))
}

// CreateComment comments on exactly one question or answer
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.CreateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), service.CreateCommentInput{
		AuthorID:   userID,
		Body:       input.Body,
		QuestionID: input.QuestionID,
		AnswerID:   input.AnswerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, userID, input.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment (owner only)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
