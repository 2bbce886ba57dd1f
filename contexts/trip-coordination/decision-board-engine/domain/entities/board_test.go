package entities

import (
	"testing"
	"time"
)

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from    BoardPhase
		to      BoardPhase
		allowed bool
	}{
		{PhaseDiscussion, PhaseVoting, true},
		{PhaseDiscussion, PhaseCancelled, true},
		{PhaseDiscussion, PhaseDecided, false},
		{PhaseVoting, PhaseDecided, true},
		{PhaseVoting, PhaseCancelled, true},
		{PhaseVoting, PhaseDiscussion, false},
		{PhaseDecided, PhaseVoting, false},
		{PhaseDecided, PhaseCancelled, false},
		{PhaseCancelled, PhaseVoting, false},
		{PhaseCancelled, PhaseDecided, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTransitionSetsWinnerOnlyOnDecided(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	board := Board{Phase: PhaseVoting}

	if board.Transition(PhaseDecided, nil, now) {
		t.Fatalf("decided without a winner must be rejected")
	}

	winner := "opt-1"
	if !board.Transition(PhaseDecided, &winner, now) {
		t.Fatalf("voting -> decided with winner must succeed")
	}
	if board.WinningOptionID == nil || *board.WinningOptionID != "opt-1" {
		t.Fatalf("winner not recorded")
	}
	if !board.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at not stamped")
	}

	if board.Transition(PhaseCancelled, nil, now) {
		t.Fatalf("terminal board must not transition")
	}
}

func TestTransitionCancelledKeepsWinnerEmpty(t *testing.T) {
	board := Board{Phase: PhaseVoting}
	if !board.Transition(PhaseCancelled, nil, time.Now()) {
		t.Fatalf("voting -> cancelled must succeed")
	}
	if board.WinningOptionID != nil {
		t.Fatalf("cancelled board must not carry a winner")
	}
}

func TestValidThreshold(t *testing.T) {
	for _, valid := range []float64{0.5, 0.75, 1.0} {
		if !ValidThreshold(valid) {
			t.Fatalf("threshold %f should be valid", valid)
		}
	}
	for _, invalid := range []float64{0, 0.49, 1.01, -1} {
		if ValidThreshold(invalid) {
			t.Fatalf("threshold %f should be invalid", invalid)
		}
	}
}

func TestDeadlineExpired(t *testing.T) {
	deadline := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	board := Board{VotingDeadline: deadline}

	if board.DeadlineExpired(deadline) {
		t.Fatalf("deadline instant itself is not expired")
	}
	if !board.DeadlineExpired(deadline.Add(time.Second)) {
		t.Fatalf("one second past deadline must be expired")
	}
}

func TestVoteTypeValidity(t *testing.T) {
	for _, valid := range []VoteType{VoteTypeUpvote, VoteTypeDownvote, VoteTypeAbstain} {
		if !valid.Valid() {
			t.Fatalf("%s should be valid", valid)
		}
	}
	if VoteType("maybe").Valid() {
		t.Fatalf("unknown vote type should be invalid")
	}
	if VoteTypeAbstain.Directional() {
		t.Fatalf("abstain is not directional")
	}
	if !VoteTypeUpvote.Directional() || !VoteTypeDownvote.Directional() {
		t.Fatalf("up/down votes are directional")
	}
}
