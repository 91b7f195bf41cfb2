package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type QuestionHandler struct {
	questions *service.QuestionService
}

func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// GetQuestions lists questions, filtered by ?tag= or the ?search= syntax
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	questions, err := h.questions.List(c.Request.Context(), service.ListQuestionsInput{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns a single question with its answers and counts a view
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	question, err := h.questions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) GetUserQuestions(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	questions, err := h.questions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(questions))
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.CreateQuestionRequest
	if !bindJSON(c, &input) {
		return
	}

	question, err := h.questions.Create(c.Request.Context(), service.CreateQuestionInput{
		AuthorID:    userID,
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		Tags:        input.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question (owner only)
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateQuestionRequest
	if !bindJSON(c, &input) {
		return
	}

	question, err := h.questions.Update(c.Request.Context(), service.UpdateQuestionInput{
		ID:          id,
		RequesterID: userID,
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		Tags:        input.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question (owner only)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.questions.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// emptyIfNil keeps list endpoints returning [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
