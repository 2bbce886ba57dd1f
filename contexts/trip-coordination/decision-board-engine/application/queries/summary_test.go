package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/adapters/memory"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.SetMember("trip-1", "org-1", true)
	store.SetMember("trip-1", "u1", false)
	store.SetMember("trip-1", "u2", false)
	store.SetMember("trip-1", "u3", false)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	board := entities.Board{
		BoardID:            "board-1",
		TripID:             "trip-1",
		CreatorID:          "org-1",
		ConsensusThreshold: 0.6,
		VotingDeadline:     now.Add(24 * time.Hour),
		Phase:              entities.PhaseVoting,
		Version:            2,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := store.CreateBoard(context.Background(), board); err != nil {
		t.Fatalf("seed board failed: %v", err)
	}

	votes := []entities.Vote{
		{VoteID: "v1", BoardID: "board-1", OptionID: "opt-1", VoterID: "u1", Type: entities.VoteTypeUpvote, Weight: 1, CreatedAt: now},
		{VoteID: "v2", BoardID: "board-1", OptionID: "opt-1", VoterID: "u2", Type: entities.VoteTypeDownvote, Weight: 1, CreatedAt: now.Add(time.Second)},
		{VoteID: "v3", BoardID: "board-1", OptionID: "opt-2", VoterID: "u1", Type: entities.VoteTypeUpvote, Weight: 1, CreatedAt: now.Add(2 * time.Second)},
	}
	for _, vote := range votes {
		if err := store.AppendVote(context.Background(), vote); err != nil {
			t.Fatalf("seed vote failed: %v", err)
		}
	}
	return store
}

func TestSummaryAggregates(t *testing.T) {
	store := seedStore(t)
	uc := SummaryUseCase{Boards: store, Votes: store, Trips: store}

	summary, err := uc.Summary(context.Background(), "board-1", 0)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalVotes != 3 {
		t.Fatalf("expected 3 votes, got %d", summary.TotalVotes)
	}
	if summary.DistinctVoters != 2 {
		t.Fatalf("expected 2 distinct voters, got %d", summary.DistinctVoters)
	}
	if summary.ConsensusReached {
		t.Fatalf("voting board must not report consensus")
	}
	if !summary.HasTopOption || summary.TopOption.OptionID != "opt-2" {
		t.Fatalf("expected opt-2 on top, got %+v", summary.TopOption)
	}
	// 2 voters over 4 eligible members.
	if summary.ParticipationRate != 0.5 {
		t.Fatalf("expected participation 0.5, got %f", summary.ParticipationRate)
	}
}

func TestSummaryCallerSuppliedEligibleCount(t *testing.T) {
	store := seedStore(t)
	uc := SummaryUseCase{Boards: store, Votes: store, Trips: store}

	summary, err := uc.Summary(context.Background(), "board-1", 8)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.ParticipationRate != 0.25 {
		t.Fatalf("expected participation 0.25, got %f", summary.ParticipationRate)
	}
}

func TestSummaryUnknownBoard(t *testing.T) {
	store := seedStore(t)
	uc := SummaryUseCase{Boards: store, Votes: store, Trips: store}

	if _, err := uc.Summary(context.Background(), "board-missing", 0); !errors.Is(err, domainerrors.ErrBoardNotFound) {
		t.Fatalf("expected ErrBoardNotFound, got %v", err)
	}
	if _, err := uc.Summary(context.Background(), "", 0); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
