package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "wayfarer/contexts/trip-coordination/decision-board-engine/application"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/consensus"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

const defaultWriteAttempts = 3

// CreateBoardCommand opens a new decision board for a trip, in discussion phase.
type CreateBoardCommand struct {
	TripID             string
	CreatorID          string
	ConsensusThreshold float64
	VotingDeadline     time.Time
}

// ForceDecisionCommand is the organizer override: the board moves straight to
// decided with the supplied option, bypassing the consensus calculator.
type ForceDecisionCommand struct {
	BoardID         string
	WinningOptionID string
	CallerID        string
}

// BoardUseCase orchestrates the decision-board lifecycle: creation, phase
// transitions, vote submission and consensus settlement. Writes on the same
// board are serialized through a per-board lock, and board updates are
// version-conditioned so concurrent instances retry instead of losing updates.
type BoardUseCase struct {
	Boards        ports.BoardRepository
	Votes         ports.VoteLedger
	Trips         ports.TripDirectory
	Options       ports.ItineraryCatalog
	Outbox        ports.OutboxWriter
	Notifier      ports.Notifier
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	WriteAttempts int
	Logger        *slog.Logger

	locks sync.Map // boardID -> *sync.Mutex
}

func (uc *BoardUseCase) CreateBoard(ctx context.Context, cmd CreateBoardCommand) (entities.Board, error) {
	logger := application.ResolveLogger(uc.Logger)
	tripID := strings.TrimSpace(cmd.TripID)
	creatorID := strings.TrimSpace(cmd.CreatorID)
	now := uc.now()

	if tripID == "" || creatorID == "" || !entities.ValidThreshold(cmd.ConsensusThreshold) ||
		!cmd.VotingDeadline.After(now) {
		logger.Warn("board create validation failed",
			"event", "board_create_validation_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"trip_id", tripID,
			"creator_id", creatorID,
		)
		return entities.Board{}, domainerrors.ErrInvalidInput
	}

	member, err := uc.Trips.IsMember(ctx, tripID, creatorID)
	if err != nil {
		return entities.Board{}, err
	}
	if !member {
		return entities.Board{}, domainerrors.ErrNotEligible
	}

	if _, exists, err := uc.Boards.GetActiveBoardByTrip(ctx, tripID); err != nil {
		return entities.Board{}, err
	} else if exists {
		return entities.Board{}, domainerrors.ErrBoardExists
	}

	boardID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Board{}, err
	}
	board := entities.Board{
		BoardID:            boardID,
		TripID:             tripID,
		CreatorID:          creatorID,
		ConsensusThreshold: cmd.ConsensusThreshold,
		VotingDeadline:     cmd.VotingDeadline.UTC(),
		Phase:              entities.PhaseDiscussion,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.Boards.CreateBoard(ctx, board); err != nil {
		return entities.Board{}, err
	}

	memberCount, err := uc.Trips.EligibleVoterCount(ctx, tripID)
	if err != nil {
		logger.Warn("eligible voter count lookup failed",
			"event", "board_voter_count_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"trip_id", tripID,
			"error", err.Error(),
		)
		memberCount = 0
	}
	uc.emit(ctx, events.Event{
		BoardID:    board.BoardID,
		Kind:       events.KindBoardCreated,
		OccurredAt: now,
		BoardCreated: &events.BoardCreatedPayload{
			TripID:             board.TripID,
			CreatorID:          board.CreatorID,
			InvitedMemberCount: memberCount,
			ConsensusThreshold: board.ConsensusThreshold,
			VotingDeadline:     board.VotingDeadline.Format(time.RFC3339),
		},
	})

	logger.Info("decision board created",
		"event", "board_created",
		"module", "trip-coordination/decision-board-engine",
		"layer", "application",
		"board_id", board.BoardID,
		"trip_id", board.TripID,
		"threshold", board.ConsensusThreshold,
	)
	return board, nil
}

// OpenVoting moves the board from discussion into voting. Organizer only.
func (uc *BoardUseCase) OpenVoting(ctx context.Context, boardID string, callerID string) (entities.Board, error) {
	boardID = strings.TrimSpace(boardID)
	callerID = strings.TrimSpace(callerID)
	if boardID == "" || callerID == "" {
		return entities.Board{}, domainerrors.ErrInvalidInput
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return entities.Board{}, err
	}
	if err := uc.requireOrganizer(ctx, board.TripID, callerID); err != nil {
		return entities.Board{}, err
	}

	updated, err := uc.mutateBoard(ctx, boardID, func(board *entities.Board) error {
		if board.Phase.Terminal() {
			return domainerrors.ErrVotingClosed
		}
		if !board.Transition(entities.PhaseVoting, nil, uc.now()) {
			return domainerrors.ErrBoardNotOpen
		}
		return nil
	})
	if err != nil {
		return entities.Board{}, err
	}

	uc.emit(ctx, events.Event{
		BoardID:    updated.BoardID,
		Kind:       events.KindBoardUpdated,
		OccurredAt: updated.UpdatedAt,
		BoardUpdated: &events.BoardUpdatedPayload{
			Phase:  string(updated.Phase),
			Reason: "voting_opened",
		},
	})

	application.ResolveLogger(uc.Logger).Info("decision board voting opened",
		"event", "board_voting_opened",
		"module", "trip-coordination/decision-board-engine",
		"layer", "application",
		"board_id", updated.BoardID,
		"trip_id", updated.TripID,
	)
	return updated, nil
}

// ForceDecision decides the board with the caller-supplied option regardless of
// computed scores. A board still in discussion passes through voting in the
// same commit so the phase history stays legal.
func (uc *BoardUseCase) ForceDecision(ctx context.Context, cmd ForceDecisionCommand) (entities.Board, error) {
	boardID := strings.TrimSpace(cmd.BoardID)
	optionID := strings.TrimSpace(cmd.WinningOptionID)
	callerID := strings.TrimSpace(cmd.CallerID)
	if boardID == "" || optionID == "" || callerID == "" {
		return entities.Board{}, domainerrors.ErrInvalidInput
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return entities.Board{}, err
	}
	if err := uc.requireOrganizer(ctx, board.TripID, callerID); err != nil {
		return entities.Board{}, err
	}
	belongs, err := uc.Options.OptionBelongsToTrip(ctx, optionID, board.TripID)
	if err != nil {
		return entities.Board{}, err
	}
	if !belongs {
		return entities.Board{}, domainerrors.ErrOptionNotFound
	}

	updated, err := uc.mutateBoard(ctx, boardID, func(board *entities.Board) error {
		if board.Phase.Terminal() {
			return domainerrors.ErrVotingClosed
		}
		now := uc.now()
		if board.Phase == entities.PhaseDiscussion {
			board.Transition(entities.PhaseVoting, nil, now)
		}
		if !board.Transition(entities.PhaseDecided, &optionID, now) {
			return domainerrors.ErrVotingClosed
		}
		return nil
	})
	if err != nil {
		return entities.Board{}, err
	}

	votes, err := uc.Votes.ListVotesByBoard(ctx, boardID)
	if err != nil {
		application.ResolveLogger(uc.Logger).Warn("vote ledger read failed for forced decision",
			"event", "board_force_votes_read_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", boardID,
			"error", err.Error(),
		)
		votes = nil
	}
	score := 0.0
	for _, tally := range consensus.Evaluate(votes, updated.ConsensusThreshold).Tallies {
		if tally.OptionID == optionID {
			score = tally.Score
			break
		}
	}
	uc.emit(ctx, events.Event{
		BoardID:    updated.BoardID,
		Kind:       events.KindConsensusReached,
		OccurredAt: updated.UpdatedAt,
		ConsensusReached: &events.ConsensusReachedPayload{
			WinningOptionID: optionID,
			Threshold:       updated.ConsensusThreshold,
			FinalVoteCount:  len(votes),
			WinningScore:    score,
			Forced:          true,
		},
	})

	application.ResolveLogger(uc.Logger).Info("decision board force decided",
		"event", "board_force_decided",
		"module", "trip-coordination/decision-board-engine",
		"layer", "application",
		"board_id", updated.BoardID,
		"winning_option_id", optionID,
		"caller_id", callerID,
	)
	return updated, nil
}

// CancelBoard is the organizer escape hatch from any non-terminal phase.
func (uc *BoardUseCase) CancelBoard(ctx context.Context, boardID string, callerID string) (entities.Board, error) {
	boardID = strings.TrimSpace(boardID)
	callerID = strings.TrimSpace(callerID)
	if boardID == "" || callerID == "" {
		return entities.Board{}, domainerrors.ErrInvalidInput
	}

	unlock := uc.lockBoard(boardID)
	defer unlock()

	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return entities.Board{}, err
	}
	if err := uc.requireOrganizer(ctx, board.TripID, callerID); err != nil {
		return entities.Board{}, err
	}

	updated, err := uc.mutateBoard(ctx, boardID, func(board *entities.Board) error {
		if !board.Transition(entities.PhaseCancelled, nil, uc.now()) {
			return domainerrors.ErrVotingClosed
		}
		return nil
	})
	if err != nil {
		return entities.Board{}, err
	}

	uc.emit(ctx, events.Event{
		BoardID:    updated.BoardID,
		Kind:       events.KindBoardUpdated,
		OccurredAt: updated.UpdatedAt,
		BoardUpdated: &events.BoardUpdatedPayload{
			Phase:  string(updated.Phase),
			Reason: "cancelled_by_organizer",
		},
	})
	return updated, nil
}

func (uc *BoardUseCase) requireOrganizer(ctx context.Context, tripID string, callerID string) error {
	organizer, err := uc.Trips.IsOrganizer(ctx, tripID, callerID)
	if err != nil {
		return err
	}
	if !organizer {
		return domainerrors.ErrNotOrganizer
	}
	return nil
}

// mutateBoard runs the optimistic write loop: read, apply, conditional write.
// Version conflicts from concurrent instances are retried a bounded number of
// times before surfacing ErrBusy.
func (uc *BoardUseCase) mutateBoard(
	ctx context.Context,
	boardID string,
	apply func(*entities.Board) error,
) (entities.Board, error) {
	attempts := uc.WriteAttempts
	if attempts <= 0 {
		attempts = defaultWriteAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		board, err := uc.Boards.GetBoard(ctx, boardID)
		if err != nil {
			return entities.Board{}, err
		}
		expected := board.Version
		if err := apply(&board); err != nil {
			return entities.Board{}, err
		}
		board.Version = expected + 1
		err = uc.Boards.UpdateBoard(ctx, board, expected)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, domainerrors.ErrVersionConflict) {
			return entities.Board{}, err
		}
		application.ResolveLogger(uc.Logger).Warn("decision board write conflict, retrying",
			"event", "board_write_conflict",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", boardID,
			"attempt", attempt+1,
		)
	}
	return entities.Board{}, domainerrors.ErrBusy
}

// lockBoard serializes in-process writers per board. Boards are independent;
// two different boards never contend.
func (uc *BoardUseCase) lockBoard(boardID string) func() {
	value, _ := uc.locks.LoadOrStore(boardID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (uc *BoardUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
