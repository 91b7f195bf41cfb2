// Package events defines domain events emitted after committed writes and the
// publishers that deliver them.
package events

import (
	"context"
	"time"
)

const (
	TypeVoteCast       = "vote.cast"
	TypeAnswerAccepted = "answer.accepted"
)

// Event is anything with a routing type.
type Event interface {
	EventType() string
}

// VoteCast describes one completed vote engine call.
type VoteCast struct {
	VoterID         int       `json:"voter_id"`
	TargetKind      string    `json:"target_kind"`
	TargetID        int       `json:"target_id"`
	Direction       int       `json:"direction"`
	Removed         bool      `json:"removed"`
	VoteDelta       int       `json:"vote_delta"`
	ReputationDelta int       `json:"reputation_delta"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (VoteCast) EventType() string { return TypeVoteCast }

// AnswerAccepted is emitted when a question author accepts an answer.
type AnswerAccepted struct {
	AnswerID       int       `json:"answer_id"`
	QuestionID     int       `json:"question_id"`
	AnswerAuthorID int       `json:"answer_author_id"`
	AcceptedBy     int       `json:"accepted_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (AnswerAccepted) EventType() string { return TypeAnswerAccepted }

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
