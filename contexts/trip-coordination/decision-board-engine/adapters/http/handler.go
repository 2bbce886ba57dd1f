package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/application/commands"
	"wayfarer/contexts/trip-coordination/decision-board-engine/application/queries"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	httptransport "wayfarer/contexts/trip-coordination/decision-board-engine/transport/http"
)

type Handler struct {
	Boards    *commands.BoardUseCase
	Summaries queries.SummaryUseCase
	Logger    *slog.Logger
}

func (h Handler) CreateBoardHandler(
	ctx context.Context,
	tripID string,
	creatorID string,
	req httptransport.CreateBoardRequest,
) (httptransport.BoardResponse, error) {
	deadline, err := time.Parse(time.RFC3339, req.VotingDeadline)
	if err != nil {
		return httptransport.BoardResponse{}, domainerrors.ErrInvalidInput
	}
	board, err := h.Boards.CreateBoard(ctx, commands.CreateBoardCommand{
		TripID:             tripID,
		CreatorID:          creatorID,
		ConsensusThreshold: req.ConsensusThreshold,
		VotingDeadline:     deadline,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board), nil
}

func (h Handler) GetBoardHandler(ctx context.Context, boardID string) (httptransport.BoardResponse, error) {
	board, err := h.Summaries.Boards.GetBoard(ctx, boardID)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board), nil
}

func (h Handler) OpenVotingHandler(ctx context.Context, boardID string, callerID string) (httptransport.BoardResponse, error) {
	board, err := h.Boards.OpenVoting(ctx, boardID, callerID)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board), nil
}

func (h Handler) SubmitVoteHandler(
	ctx context.Context,
	boardID string,
	voterID string,
	req httptransport.SubmitVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Boards.SubmitVote(ctx, commands.SubmitVoteCommand{
		BoardID:  boardID,
		OptionID: req.OptionID,
		VoterID:  voterID,
		Type:     entities.VoteType(req.VoteType),
		Weight:   req.Weight,
		Comment:  req.Comment,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:           result.Vote.VoteID,
		BoardID:          result.Vote.BoardID,
		OptionID:         result.Vote.OptionID,
		VoterID:          result.Vote.VoterID,
		VoteType:         string(result.Vote.Type),
		Weight:           result.Vote.Weight,
		Comment:          result.Vote.Comment,
		ConsensusReached: result.ConsensusReached,
		WinningOptionID:  result.WinningOptionID,
	}, nil
}

func (h Handler) CheckConsensusHandler(ctx context.Context, boardID string) (httptransport.ConsensusStatusResponse, error) {
	status, err := h.Boards.CheckConsensus(ctx, boardID)
	if err != nil {
		return httptransport.ConsensusStatusResponse{}, err
	}
	return httptransport.ConsensusStatusResponse{
		BoardID:         boardID,
		Reached:         status.Reached,
		WinningOptionID: status.WinningOptionID,
	}, nil
}

func (h Handler) ForceDecisionHandler(
	ctx context.Context,
	boardID string,
	callerID string,
	req httptransport.ForceDecisionRequest,
) (httptransport.BoardResponse, error) {
	board, err := h.Boards.ForceDecision(ctx, commands.ForceDecisionCommand{
		BoardID:         boardID,
		WinningOptionID: req.WinningOptionID,
		CallerID:        callerID,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board), nil
}

func (h Handler) CancelBoardHandler(ctx context.Context, boardID string, callerID string) (httptransport.BoardResponse, error) {
	board, err := h.Boards.CancelBoard(ctx, boardID, callerID)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board), nil
}

func (h Handler) BoardSummaryHandler(ctx context.Context, boardID string) (httptransport.BoardSummaryResponse, error) {
	summary, err := h.Summaries.Summary(ctx, boardID, 0)
	if err != nil {
		return httptransport.BoardSummaryResponse{}, err
	}
	resp := httptransport.BoardSummaryResponse{
		Board:             toBoardResponse(summary.Board),
		TotalVotes:        summary.TotalVotes,
		DistinctVoters:    summary.DistinctVoters,
		ConsensusReached:  summary.ConsensusReached,
		ParticipationRate: summary.ParticipationRate,
	}
	if summary.HasTopOption {
		resp.TopOption = &httptransport.OptionTallyItem{
			OptionID:          summary.TopOption.OptionID,
			WeightedUpvotes:   summary.TopOption.WeightedUpvotes,
			WeightedDownvotes: summary.TopOption.WeightedDownvotes,
			Score:             summary.TopOption.Score,
			VoteCount:         summary.TopOption.VoteCount,
		}
	}
	return resp, nil
}

func toBoardResponse(board entities.Board) httptransport.BoardResponse {
	resp := httptransport.BoardResponse{
		BoardID:            board.BoardID,
		TripID:             board.TripID,
		CreatorID:          board.CreatorID,
		ConsensusThreshold: board.ConsensusThreshold,
		VotingDeadline:     board.VotingDeadline.UTC().Format(time.RFC3339),
		Phase:              string(board.Phase),
		CreatedAt:          board.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          board.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if board.WinningOptionID != nil {
		resp.WinningOptionID = *board.WinningOptionID
	}
	return resp
}
