package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/service"
)

type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// VoteQuestion casts one vote per user on a question. Same direction toggles off, opposite switches
func (h *VoteHandler) VoteQuestion(c *gin.Context) {
	h.cast(c, models.TargetQuestion)
}

// VoteAnswer casts one vote per user on an answer. Same direction toggles off, opposite switches
func (h *VoteHandler) VoteAnswer(c *gin.Context) {
	h.cast(c, models.TargetAnswer)
}

func (h *VoteHandler) cast(c *gin.Context, kind models.TargetKind) {
	voterID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.VoteRequest
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.votes.CastVote(c.Request.Context(), service.CastVoteInput{
		VoterID:    voterID,
		TargetKind: kind,
		TargetID:   input.TargetID,
		Direction:  models.VoteDirection(input.VoteType),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUserVotes lists the authenticated user's live votes
func (h *VoteHandler) GetUserVotes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	votes, err := h.votes.UserVotes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(votes))
}

func (h *VoteHandler) GetQuestionVoteCount(c *gin.Context) {
	h.count(c, models.TargetQuestion, "questionId")
}

func (h *VoteHandler) GetAnswerVoteCount(c *gin.Context) {
	h.count(c, models.TargetAnswer, "answerId")
}

func (h *VoteHandler) count(c *gin.Context, kind models.TargetKind, param string) {
	id, ok := paramID(c, param)
	if !ok {
		return
	}

	n, err := h.votes.VoteCount(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target_type": kind, "target_id": id, "vote_count": n})
}

func (h *VoteHandler) GetUserQuestionVote(c *gin.Context) {
	h.userVote(c, models.TargetQuestion, "questionId")
}

func (h *VoteHandler) GetUserAnswerVote(c *gin.Context) {
	h.userVote(c, models.TargetAnswer, "answerId")
}

// userVote reports the caller's direction on a target, 0 when they have not voted.
func (h *VoteHandler) userVote(c *gin.Context, kind models.TargetKind, param string) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, param)
	if !ok {
		return
	}

	vote, err := h.votes.UserVote(c.Request.Context(), userID, kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	voteType := 0
	if vote != nil {
		voteType = int(vote.Direction)
	}
	c.JSON(http.StatusOK, gin.H{"target_type": kind, "target_id": id, "vote_type": voteType})
}
