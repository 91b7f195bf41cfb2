package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/emilythestrangee/queryhub/backend/internal/events"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
	"github.com/emilythestrangee/queryhub/backend/internal/observability"
	"github.com/emilythestrangee/queryhub/backend/internal/repository"
)

// VoteService records votes on questions and answers and keeps the target's
// vote count and its author's reputation in step with them.
type VoteService struct {
	repos     *repository.Repositories
	publisher events.Publisher
}

func NewVoteService(repos *repository.Repositories, publisher events.Publisher) *VoteService {
	return &VoteService{repos: repos, publisher: events.Guard(publisher)}
}

type CastVoteInput struct {
	VoterID    int
	TargetKind models.TargetKind
	TargetID   int
	Direction  models.VoteDirection
}

// VoteResult reports what CastVote did. Direction is the vote now on record
// and is nil when the call removed the vote.
type VoteResult struct {
	VoteID          int                   `json:"vote_id"`
	Removed         bool                  `json:"removed"`
	Direction       *models.VoteDirection `json:"new_direction,omitempty"`
	VoteDelta       int                   `json:"vote_delta"`
	ReputationDelta int                   `json:"reputation_delta"`
	VoteCount       int                   `json:"vote_count"`
}

type transition struct {
	action  string
	voteDt  int
	repDt   int
	removed bool
}

// voteTransition computes the effect of casting dir over existing.
//
//	no prior vote   -> create, +weight(dir), +rep(dir)
//	same direction  -> remove, -weight(dir), -rep(dir)
//	opposite        -> flip,   weight(dir)-weight(old), rep(dir)-rep(old)
func voteTransition(existing *models.Vote, dir models.VoteDirection) transition {
	switch {
	case existing == nil:
		return transition{action: "created", voteDt: dir.Weight(), repDt: dir.Reputation()}
	case existing.Direction == dir:
		return transition{action: "removed", voteDt: -dir.Weight(), repDt: -dir.Reputation(), removed: true}
	default:
		return transition{
			action: "flipped",
			voteDt: dir.Weight() - existing.Direction.Weight(),
			repDt:  dir.Reputation() - existing.Direction.Reputation(),
		}
	}
}

// CastVote applies one vote by in.VoterID on the target. Casting the
// direction already on record removes the vote; casting the opposite one
// flips it. All writes happen in a single transaction.
func (s *VoteService) CastVote(ctx context.Context, in CastVoteInput) (*VoteResult, error) {
	if in.VoterID <= 0 {
		return nil, models.NewUnauthorizedError("authentication required to vote")
	}
	if !in.TargetKind.Valid() {
		return nil, models.NewValidationError("vote target must be a question or an answer")
	}
	if in.TargetID <= 0 {
		return nil, models.NewValidationError("vote target id is required")
	}
	if !in.Direction.Valid() {
		return nil, models.NewValidationError("vote direction must be 1 or -1")
	}

	ctx, span := observability.Tracer.Start(ctx, "VoteService.CastVote")
	defer span.End()
	span.SetAttributes(
		attribute.String("vote.target_kind", string(in.TargetKind)),
		attribute.Int("vote.target_id", in.TargetID),
	)

	logger := observability.FromContext(ctx)
	result := &VoteResult{}
	var step transition
	reputationApplied := false

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		reputationApplied = false
		existing, err := tx.Votes.GetByVoterAndTarget(ctx, in.VoterID, in.TargetKind, in.TargetID)
		if err != nil {
			return models.NewInternalError(err)
		}

		if existing == nil {
			_, _, found, err := targetSnapshot(ctx, tx, in.TargetKind, in.TargetID)
			if err != nil {
				return models.NewInternalError(err)
			}
			if !found {
				return models.NewNotFoundError(targetResource(in.TargetKind), in.TargetID)
			}
		}

		step = voteTransition(existing, in.Direction)

		switch step.action {
		case "created":
			vote := &models.Vote{
				UserID:     in.VoterID,
				TargetKind: in.TargetKind,
				TargetID:   in.TargetID,
				Direction:  in.Direction,
			}
			if err := tx.Votes.Create(ctx, vote); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return models.NewConflictError("a vote on this target is already being recorded")
				}
				return models.NewInternalError(err)
			}
			result.VoteID = vote.ID
		case "removed":
			if err := tx.Votes.Delete(ctx, existing.ID); err != nil {
				return storageError(err, "Vote", existing.ID)
			}
			result.VoteID = existing.ID
		default:
			if err := tx.Votes.UpdateDirection(ctx, existing.ID, in.Direction); err != nil {
				return storageError(err, "Vote", existing.ID)
			}
			result.VoteID = existing.ID
		}

		if err := updateTargetVotes(ctx, tx, in.TargetKind, in.TargetID, step.voteDt); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return models.NewInternalError(err)
			}
			logger.Warn("vote target row missing while updating vote count",
				"target_kind", in.TargetKind, "target_id", in.TargetID)
		}

		authorID, voteCount, found, err := targetSnapshot(ctx, tx, in.TargetKind, in.TargetID)
		if err != nil {
			return models.NewInternalError(err)
		}
		if !found {
			logger.Warn("vote target vanished, skipping reputation update",
				"target_kind", in.TargetKind, "target_id", in.TargetID)
			return nil
		}
		result.VoteCount = voteCount

		if err := tx.Users.UpdateReputation(ctx, authorID, step.repDt); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return models.NewInternalError(err)
			}
			logger.Warn("target author missing, skipping reputation update", "user_id", authorID)
			return nil
		}
		reputationApplied = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result.Removed = step.removed
	result.VoteDelta = step.voteDt
	result.ReputationDelta = step.repDt
	if !step.removed {
		dir := in.Direction
		result.Direction = &dir
	}

	observability.VotesCast.WithLabelValues(string(in.TargetKind), step.action).Inc()
	if reputationApplied {
		observability.ReputationDelta.WithLabelValues("vote").Inc()
	}

	publish(ctx, s.publisher, events.VoteCast{
		VoterID:         in.VoterID,
		TargetKind:      string(in.TargetKind),
		TargetID:        in.TargetID,
		Direction:       int(in.Direction),
		Removed:         step.removed,
		VoteDelta:       step.voteDt,
		ReputationDelta: step.repDt,
		OccurredAt:      time.Now().UTC(),
	})

	return result, nil
}

func targetResource(kind models.TargetKind) string {
	if kind == models.TargetAnswer {
		return "Answer"
	}
	return "Question"
}

// targetSnapshot returns the author and current vote count of an active target.
func targetSnapshot(ctx context.Context, repos *repository.Repositories, kind models.TargetKind, id int) (authorID, voteCount int, found bool, err error) {
	switch kind {
	case models.TargetAnswer:
		a, err := repos.Answers.GetByID(ctx, id)
		if err != nil || a == nil {
			return 0, 0, false, err
		}
		return a.UserID, a.VoteCount, true, nil
	default:
		q, err := repos.Questions.GetByID(ctx, id)
		if err != nil || q == nil {
			return 0, 0, false, err
		}
		return q.UserID, q.VoteCount, true, nil
	}
}

func updateTargetVotes(ctx context.Context, repos *repository.Repositories, kind models.TargetKind, id, delta int) error {
	if kind == models.TargetAnswer {
		return repos.Answers.UpdateVoteCount(ctx, id, delta)
	}
	return repos.Questions.UpdateVoteCount(ctx, id, delta)
}

// UserVotes lists every live vote cast by userID.
func (s *VoteService) UserVotes(ctx context.Context, userID int) ([]*models.Vote, error) {
	votes, err := s.repos.Votes.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return votes, nil
}

// UserVote returns userID's vote on the target, or nil if there is none.
func (s *VoteService) UserVote(ctx context.Context, userID int, kind models.TargetKind, targetID int) (*models.Vote, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("vote target must be a question or an answer")
	}
	vote, err := s.repos.Votes.GetByVoterAndTarget(ctx, userID, kind, targetID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return vote, nil
}

// VoteCount sums the live votes on a target.
func (s *VoteService) VoteCount(ctx context.Context, kind models.TargetKind, targetID int) (int, error) {
	if !kind.Valid() {
		return 0, models.NewValidationError("vote target must be a question or an answer")
	}
	sum, err := s.repos.Votes.SumForTarget(ctx, kind, targetID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return sum, nil
}

// Recount rewrites every stored vote count from the live votes.
func (s *VoteService) Recount(ctx context.Context) (int64, error) {
	n, err := s.repos.Votes.RecountTargets(ctx)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
