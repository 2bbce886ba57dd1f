package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
)

func testBoard(boardID string, tripID string) entities.Board {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return entities.Board{
		BoardID:            boardID,
		TripID:             tripID,
		CreatorID:          "org-1",
		ConsensusThreshold: 0.6,
		VotingDeadline:     now.Add(24 * time.Hour),
		Phase:              entities.PhaseDiscussion,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestCreateBoardRejectsSecondActiveBoard(t *testing.T) {
	store := NewStore()
	if err := store.CreateBoard(context.Background(), testBoard("board-1", "trip-1")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := store.CreateBoard(context.Background(), testBoard("board-2", "trip-1")); !errors.Is(err, domainerrors.ErrBoardExists) {
		t.Fatalf("expected ErrBoardExists, got %v", err)
	}

	// A decided board frees the trip for a new one.
	board, _ := store.GetBoard(context.Background(), "board-1")
	winner := "opt-1"
	board.Phase = entities.PhaseVoting
	if err := store.UpdateBoard(context.Background(), board, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	board.Phase = entities.PhaseDecided
	board.WinningOptionID = &winner
	board.Version = 2
	if err := store.UpdateBoard(context.Background(), board, 1); err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	if err := store.CreateBoard(context.Background(), testBoard("board-2", "trip-1")); err != nil {
		t.Fatalf("create after terminal board failed: %v", err)
	}
}

func TestUpdateBoardVersionConflict(t *testing.T) {
	store := NewStore()
	if err := store.CreateBoard(context.Background(), testBoard("board-1", "trip-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	board, _ := store.GetBoard(context.Background(), "board-1")
	board.Version = 2
	if err := store.UpdateBoard(context.Background(), board, 99); !errors.Is(err, domainerrors.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if err := store.UpdateBoard(context.Background(), board, 1); err != nil {
		t.Fatalf("matching version update failed: %v", err)
	}
}

func TestAppendVoteEnforcesUniqueness(t *testing.T) {
	store := NewStore()
	vote := entities.Vote{
		VoteID:   "v1",
		BoardID:  "board-1",
		OptionID: "opt-1",
		VoterID:  "u1",
		Type:     entities.VoteTypeUpvote,
		Weight:   1,
	}
	if err := store.AppendVote(context.Background(), vote); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	duplicate := vote
	duplicate.VoteID = "v2"
	if err := store.AppendVote(context.Background(), duplicate); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	otherOption := vote
	otherOption.VoteID = "v3"
	otherOption.OptionID = "opt-2"
	if err := store.AppendVote(context.Background(), otherOption); err != nil {
		t.Fatalf("vote on other option failed: %v", err)
	}

	has, err := store.HasVote(context.Background(), "board-1", "u1", "opt-1")
	if err != nil || !has {
		t.Fatalf("expected HasVote true, got %v %v", has, err)
	}
}

func TestListVotesPreservesCommitOrder(t *testing.T) {
	store := NewStore()
	for i, option := range []string{"opt-3", "opt-1", "opt-2"} {
		vote := entities.Vote{
			VoteID:    "v" + option,
			BoardID:   "board-1",
			OptionID:  option,
			VoterID:   "u1",
			Type:      entities.VoteTypeUpvote,
			Weight:    1,
			CreatedAt: time.Date(2026, time.March, 1, 12, 0, i, 0, time.UTC),
		}
		if err := store.AppendVote(context.Background(), vote); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	votes, err := store.ListVotesByBoard(context.Background(), "board-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(votes) != 3 || votes[0].OptionID != "opt-3" || votes[2].OptionID != "opt-2" {
		t.Fatalf("commit order not preserved: %+v", votes)
	}
}

func TestListExpiredVotingBoards(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	expired := testBoard("board-expired", "trip-1")
	expired.Phase = entities.PhaseVoting
	expired.VotingDeadline = now.Add(-time.Hour)
	fresh := testBoard("board-fresh", "trip-2")
	fresh.Phase = entities.PhaseVoting
	fresh.VotingDeadline = now.Add(time.Hour)

	for _, board := range []entities.Board{expired, fresh} {
		if err := store.CreateBoard(context.Background(), board); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	boards, err := store.ListExpiredVotingBoards(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(boards) != 1 || boards[0].BoardID != "board-expired" {
		t.Fatalf("expected only the expired board, got %+v", boards)
	}
}
