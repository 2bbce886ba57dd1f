package commands

import (
	"context"
	"strings"

	application "wayfarer/contexts/trip-coordination/decision-board-engine/application"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/consensus"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
)

// SubmitVoteCommand appends one vote to a board's ledger.
type SubmitVoteCommand struct {
	BoardID  string
	OptionID string
	VoterID  string
	Type     entities.VoteType
	Weight   float64
	Comment  string
}

// SubmitVoteResult reports the appended vote together with the consensus state
// the submission produced.
type SubmitVoteResult struct {
	Vote             entities.Vote
	ConsensusReached bool
	WinningOptionID  string
}

// SubmitVote validates preconditions, appends exactly one vote and runs the
// consensus recheck in the same per-board critical section. A board whose
// deadline has passed is settled first and the vote is rejected.
func (uc *BoardUseCase) SubmitVote(ctx context.Context, cmd SubmitVoteCommand) (SubmitVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	boardID := strings.TrimSpace(cmd.BoardID)
	optionID := strings.TrimSpace(cmd.OptionID)
	voterID := strings.TrimSpace(cmd.VoterID)

	if boardID == "" || optionID == "" || voterID == "" || !cmd.Type.Valid() ||
		cmd.Weight < 0 || len(cmd.Comment) > entities.MaxCommentLength {
		logger.Warn("vote submit validation failed",
			"event", "vote_submit_validation_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", boardID,
			"voter_id", voterID,
		)
		return SubmitVoteResult{}, domainerrors.ErrInvalidInput
	}
	weight := cmd.Weight
	if weight == 0 {
		weight = entities.DefaultVoteWeight
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	now := uc.now()

	// Deadline expiry settles the board before the triggering request is
	// processed; the vote itself is always rejected.
	if board.Phase == entities.PhaseVoting && board.DeadlineExpired(now) {
		if _, err := uc.settleExpired(ctx, board); err != nil {
			return SubmitVoteResult{}, err
		}
		return SubmitVoteResult{}, domainerrors.ErrVotingClosed
	}
	switch board.Phase {
	case entities.PhaseDiscussion:
		return SubmitVoteResult{}, domainerrors.ErrBoardNotOpen
	case entities.PhaseDecided, entities.PhaseCancelled:
		return SubmitVoteResult{}, domainerrors.ErrVotingClosed
	}

	member, err := uc.Trips.IsMember(ctx, board.TripID, voterID)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	if !member {
		return SubmitVoteResult{}, domainerrors.ErrNotEligible
	}
	belongs, err := uc.Options.OptionBelongsToTrip(ctx, optionID, board.TripID)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	if !belongs {
		return SubmitVoteResult{}, domainerrors.ErrOptionNotFound
	}
	if voted, err := uc.Votes.HasVote(ctx, boardID, voterID, optionID); err != nil {
		return SubmitVoteResult{}, err
	} else if voted {
		return SubmitVoteResult{}, domainerrors.ErrDuplicateVote
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:    voteID,
		BoardID:   boardID,
		OptionID:  optionID,
		VoterID:   voterID,
		Type:      cmd.Type,
		Weight:    weight,
		Comment:   strings.TrimSpace(cmd.Comment),
		CreatedAt: now,
	}
	// The ledger enforces the (board, voter, option) invariant again at write
	// time; the pre-check only exists for a cleaner fast path.
	if err := uc.Votes.AppendVote(ctx, vote); err != nil {
		return SubmitVoteResult{}, err
	}

	votes, err := uc.Votes.ListVotesByBoard(ctx, boardID)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	uc.emit(ctx, events.Event{
		BoardID:    boardID,
		Kind:       events.KindVoteCast,
		OccurredAt: now,
		VoteCast: &events.VoteCastPayload{
			VoteID:            vote.VoteID,
			VoterID:           vote.VoterID,
			OptionID:          vote.OptionID,
			VoteType:          string(vote.Type),
			TotalVotes:        len(votes),
			ConsensusProgress: uc.participation(ctx, board.TripID, len(votes)),
		},
	})

	result := SubmitVoteResult{Vote: vote}
	decision := consensus.Evaluate(votes, board.ConsensusThreshold)
	if decision.Reached {
		winner := decision.WinningOptionID
		updated, err := uc.mutateBoard(ctx, boardID, func(board *entities.Board) error {
			if board.Phase != entities.PhaseVoting {
				// Another instance decided first; our vote is already committed.
				return errAlreadySettled
			}
			if !board.Transition(entities.PhaseDecided, &winner, uc.now()) {
				return errAlreadySettled
			}
			return nil
		})
		switch err {
		case nil:
			result.ConsensusReached = true
			result.WinningOptionID = winner
			uc.emit(ctx, events.Event{
				BoardID:    boardID,
				Kind:       events.KindConsensusReached,
				OccurredAt: updated.UpdatedAt,
				ConsensusReached: &events.ConsensusReachedPayload{
					WinningOptionID: winner,
					Threshold:       board.ConsensusThreshold,
					FinalVoteCount:  len(votes),
					WinningScore:    decision.WinningScore,
				},
			})
			logger.Info("consensus reached",
				"event", "board_consensus_reached",
				"module", "trip-coordination/decision-board-engine",
				"layer", "application",
				"board_id", boardID,
				"winning_option_id", winner,
				"winning_score", decision.WinningScore,
			)
		case errAlreadySettled:
			// Vote stands; the decision was committed by a concurrent writer.
		default:
			return SubmitVoteResult{}, err
		}
	}

	logger.Info("vote recorded",
		"event", "vote_recorded",
		"module", "trip-coordination/decision-board-engine",
		"layer", "application",
		"board_id", boardID,
		"vote_id", vote.VoteID,
		"voter_id", vote.VoterID,
		"option_id", vote.OptionID,
		"vote_type", string(vote.Type),
	)
	return result, nil
}

// ConsensusStatus is the checkConsensus read surface.
type ConsensusStatus struct {
	Reached         bool
	WinningOptionID string
}

// CheckConsensus reports whether the board has reached consensus. An expired
// voting board is settled first, exactly as on the vote path.
func (uc *BoardUseCase) CheckConsensus(ctx context.Context, boardID string) (ConsensusStatus, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return ConsensusStatus{}, domainerrors.ErrInvalidInput
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return ConsensusStatus{}, err
	}

	if board.Phase == entities.PhaseVoting && board.DeadlineExpired(uc.now()) {
		settled, err := uc.settleExpired(ctx, board)
		if err != nil {
			return ConsensusStatus{}, err
		}
		board = settled
	}

	switch board.Phase {
	case entities.PhaseDecided:
		return ConsensusStatus{Reached: true, WinningOptionID: *board.WinningOptionID}, nil
	case entities.PhaseCancelled, entities.PhaseDiscussion:
		return ConsensusStatus{}, nil
	}

	votes, err := uc.Votes.ListVotesByBoard(ctx, boardID)
	if err != nil {
		return ConsensusStatus{}, err
	}
	decision := consensus.Evaluate(votes, board.ConsensusThreshold)
	if !decision.Reached {
		return ConsensusStatus{}, nil
	}
	winner := decision.WinningOptionID
	updated, err := uc.mutateBoard(ctx, boardID, func(board *entities.Board) error {
		if board.Phase != entities.PhaseVoting {
			return errAlreadySettled
		}
		if !board.Transition(entities.PhaseDecided, &winner, uc.now()) {
			return errAlreadySettled
		}
		return nil
	})
	if err == errAlreadySettled {
		return ConsensusStatus{Reached: true, WinningOptionID: winner}, nil
	}
	if err != nil {
		return ConsensusStatus{}, err
	}
	uc.emit(ctx, events.Event{
		BoardID:    boardID,
		Kind:       events.KindConsensusReached,
		OccurredAt: updated.UpdatedAt,
		ConsensusReached: &events.ConsensusReachedPayload{
			WinningOptionID: winner,
			Threshold:       board.ConsensusThreshold,
			FinalVoteCount:  len(votes),
			WinningScore:    decision.WinningScore,
		},
	})
	return ConsensusStatus{Reached: true, WinningOptionID: winner}, nil
}

// SettleExpired closes one expired voting board: decided when some option meets
// threshold, cancelled otherwise. Used by the deadline sweeper; no-ops on
// boards that are not expired or not voting.
func (uc *BoardUseCase) SettleExpired(ctx context.Context, boardID string) (bool, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return false, domainerrors.ErrInvalidInput
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return false, err
	}
	if board.Phase != entities.PhaseVoting || !board.DeadlineExpired(uc.now()) {
		return false, nil
	}
	if _, err := uc.settleExpired(ctx, board); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *BoardUseCase) settleExpired(ctx context.Context, board entities.Board) (entities.Board, error) {
	votes, err := uc.Votes.ListVotesByBoard(ctx, board.BoardID)
	if err != nil {
		return entities.Board{}, err
	}
	decision := consensus.Evaluate(votes, board.ConsensusThreshold)

	updated, err := uc.mutateBoard(ctx, board.BoardID, func(board *entities.Board) error {
		if board.Phase != entities.PhaseVoting {
			return errAlreadySettled
		}
		now := uc.now()
		if decision.Reached {
			winner := decision.WinningOptionID
			board.Transition(entities.PhaseDecided, &winner, now)
		} else {
			board.Transition(entities.PhaseCancelled, nil, now)
		}
		return nil
	})
	if err == errAlreadySettled {
		return uc.Boards.GetBoard(ctx, board.BoardID)
	}
	if err != nil {
		return entities.Board{}, err
	}

	if decision.Reached {
		uc.emit(ctx, events.Event{
			BoardID:    updated.BoardID,
			Kind:       events.KindConsensusReached,
			OccurredAt: updated.UpdatedAt,
			ConsensusReached: &events.ConsensusReachedPayload{
				WinningOptionID: decision.WinningOptionID,
				Threshold:       updated.ConsensusThreshold,
				FinalVoteCount:  len(votes),
				WinningScore:    decision.WinningScore,
			},
		})
	} else {
		uc.emit(ctx, events.Event{
			BoardID:    updated.BoardID,
			Kind:       events.KindBoardUpdated,
			OccurredAt: updated.UpdatedAt,
			BoardUpdated: &events.BoardUpdatedPayload{
				Phase:  string(updated.Phase),
				Reason: "voting_deadline_expired",
			},
		})
	}

	application.ResolveLogger(uc.Logger).Info("expired decision board settled",
		"event", "board_deadline_settled",
		"module", "trip-coordination/decision-board-engine",
		"layer", "application",
		"board_id", updated.BoardID,
		"phase", string(updated.Phase),
	)
	return updated, nil
}

func (uc *BoardUseCase) participation(ctx context.Context, tripID string, totalVotes int) float64 {
	eligible, err := uc.Trips.EligibleVoterCount(ctx, tripID)
	if err != nil || eligible <= 0 {
		return 0
	}
	return float64(totalVotes) / float64(eligible)
}
