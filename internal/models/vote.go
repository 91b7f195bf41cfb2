package models

import "time"

// TargetKind names the kind of entity a vote is attached to.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

func (k TargetKind) Valid() bool {
	return k == TargetQuestion || k == TargetAnswer
}

// VoteDirection is stored as +1 / -1 so that summing live votes yields the vote count.
type VoteDirection int

const (
	Upvote   VoteDirection = 1
	Downvote VoteDirection = -1
)

const (
	UpvoteReputation   = 10
	DownvoteReputation = -2
	AcceptReputation   = 15
	AnswerReputation   = 1
	CommentReputation  = 1
)

func (d VoteDirection) Valid() bool {
	return d == Upvote || d == Downvote
}

// Weight is the contribution of a live vote to its target's vote count.
func (d VoteDirection) Weight() int {
	return int(d)
}

// Reputation is the contribution of a live vote to the target author's reputation.
func (d VoteDirection) Reputation() int {
	if d == Upvote {
		return UpvoteReputation
	}
	return DownvoteReputation
}

func (d VoteDirection) Opposite() VoteDirection {
	return -d
}

func (d VoteDirection) String() string {
	switch d {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	default:
		return "unknown"
	}
}

// Vote is unique per (user, target kind, target id).
type Vote struct {
	ID         int           `gorm:"primaryKey" json:"id"`
	UserID     int           `gorm:"uniqueIndex:idx_votes_voter_target;not null" json:"user_id"`
	TargetKind TargetKind    `gorm:"uniqueIndex:idx_votes_voter_target;index:idx_votes_target;size:16;not null" json:"target_kind"`
	TargetID   int           `gorm:"uniqueIndex:idx_votes_voter_target;index:idx_votes_target;not null" json:"target_id"`
	Direction  VoteDirection `gorm:"column:vote_type;not null" json:"vote_type"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type VoteRequest struct {
	TargetID int `json:"target_id" binding:"required,gt=0"`
	VoteType int `json:"vote_type" binding:"required,oneof=-1 1"`
}
