package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type AnswerHandler struct {
	answers *service.AnswerService
}

func NewAnswerHandler(answers *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answers: answers}
}

func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	answer, err := h.answers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// GetQuestionAnswers lists answers with the accepted one first
func (h *AnswerHandler) GetQuestionAnswers(c *gin.Context) {
	questionID, ok := paramID(c, "questionId")
	if !ok {
		return
	}

	answers, err := h.answers.ListByQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(answers))
}

func (h *AnswerHandler) GetUserAnswers(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	answers, err := h.answers.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(answers))
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.CreateAnswerRequest
	if !bindJSON(c, &input) {
		return
	}

	answer, err := h.answers.Create(c.Request.Context(), service.CreateAnswerInput{
		QuestionID: input.QuestionID,
		AuthorID:   userID,
		Body:       input.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer updates an answer (owner only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateAnswerRequest
	if !bindJSON(c, &input) {
		return
	}

	answer, err := h.answers.Update(c.Request.Context(), id, userID, input.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer deletes an answer (owner only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.answers.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// AcceptAnswer marks an answer accepted (question author only)
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	answer, err := h.answers.Accept(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
