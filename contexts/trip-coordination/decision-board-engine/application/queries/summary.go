package queries

import (
	"context"
	"strings"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/consensus"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// BoardSummary is the read-model snapshot for one board. Read without the
// per-board write lock, so a just-transitioned phase may be momentarily stale.
type BoardSummary struct {
	Board             entities.Board
	TotalVotes        int
	DistinctVoters    int
	ConsensusReached  bool
	TopOption         consensus.OptionTally
	HasTopOption      bool
	ParticipationRate float64
}

type SummaryUseCase struct {
	Boards ports.BoardRepository
	Votes  ports.VoteLedger
	Trips  ports.TripDirectory
}

// Summary aggregates the board, its tallies and participation. When the caller
// does not supply an eligible-voter count (<= 0) the trip directory is asked.
func (uc SummaryUseCase) Summary(ctx context.Context, boardID string, totalEligibleVoters int) (BoardSummary, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return BoardSummary{}, domainerrors.ErrInvalidInput
	}
	board, err := uc.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return BoardSummary{}, err
	}
	votes, err := uc.Votes.ListVotesByBoard(ctx, boardID)
	if err != nil {
		return BoardSummary{}, err
	}

	summary := BoardSummary{
		Board:            board,
		TotalVotes:       len(votes),
		ConsensusReached: board.Phase == entities.PhaseDecided,
	}

	voters := make(map[string]struct{}, len(votes))
	for _, vote := range votes {
		voters[vote.VoterID] = struct{}{}
	}
	summary.DistinctVoters = len(voters)

	if top, ok := consensus.TopOption(votes); ok {
		summary.TopOption = top
		summary.HasTopOption = true
	}

	eligible := totalEligibleVoters
	if eligible <= 0 {
		if count, err := uc.Trips.EligibleVoterCount(ctx, board.TripID); err == nil {
			eligible = count
		}
	}
	if eligible > 0 {
		summary.ParticipationRate = float64(summary.DistinctVoters) / float64(eligible)
	}
	return summary, nil
}
