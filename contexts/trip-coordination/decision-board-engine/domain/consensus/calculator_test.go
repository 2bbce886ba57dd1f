package consensus

import (
	"testing"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
)

func vote(optionID string, voterID string, voteType entities.VoteType, weight float64) entities.Vote {
	return entities.Vote{
		VoteID:   optionID + "-" + voterID,
		BoardID:  "board-1",
		OptionID: optionID,
		VoterID:  voterID,
		Type:     voteType,
		Weight:   weight,
	}
}

func TestEvaluateUnanimousUpvotes(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u3", entities.VoteTypeUpvote, 1),
	}
	result := Evaluate(votes, 0.6)
	if !result.Reached {
		t.Fatalf("expected consensus reached")
	}
	if result.WinningOptionID != "opt-a" {
		t.Fatalf("expected opt-a to win, got %s", result.WinningOptionID)
	}
	if result.WinningScore != 1.0 {
		t.Fatalf("expected score 1.0, got %f", result.WinningScore)
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u3", entities.VoteTypeDownvote, 1),
	}
	result := Evaluate(votes, 0.7)
	if result.Reached {
		t.Fatalf("2/3 should not meet threshold 0.7, got score %f", result.WinningScore)
	}
	if len(result.Tallies) != 1 {
		t.Fatalf("expected one tally, got %d", len(result.Tallies))
	}
	score := result.Tallies[0].Score
	if score < 0.66 || score > 0.67 {
		t.Fatalf("expected score ~0.667, got %f", score)
	}

	// The same ledger clears a lower threshold.
	if !Evaluate(votes, 0.6).Reached {
		t.Fatalf("2/3 should meet threshold 0.6")
	}
}

func TestEvaluateAbstainExcludedFromScore(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeAbstain, 1),
		vote("opt-a", "u3", entities.VoteTypeAbstain, 1),
	}
	result := Evaluate(votes, 1.0)
	if !result.Reached {
		t.Fatalf("abstains must not dilute the score")
	}
	if result.WinningScore != 1.0 {
		t.Fatalf("expected score 1.0, got %f", result.WinningScore)
	}
	if result.Tallies[0].VoteCount != 3 {
		t.Fatalf("abstains still count as votes, got %d", result.Tallies[0].VoteCount)
	}
}

func TestEvaluateAllAbstainsNeverCandidate(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeAbstain, 1),
		vote("opt-a", "u2", entities.VoteTypeAbstain, 1),
	}
	result := Evaluate(votes, 0.5)
	if result.Reached {
		t.Fatalf("option with no directional votes must not win")
	}
	if result.Tallies[0].Score != 0 {
		t.Fatalf("expected zero score, got %f", result.Tallies[0].Score)
	}
}

func TestEvaluateWeightsRespected(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 3),
		vote("opt-a", "u2", entities.VoteTypeDownvote, 1),
	}
	result := Evaluate(votes, 0.75)
	if !result.Reached {
		t.Fatalf("3/4 weighted should meet 0.75")
	}
	if result.WinningScore != 0.75 {
		t.Fatalf("expected score 0.75, got %f", result.WinningScore)
	}
}

func TestEvaluateTieBreaksToEarliestCrossing(t *testing.T) {
	// Both options end at score 1.0; opt-b crossed the threshold first.
	votes := []entities.Vote{
		vote("opt-b", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u3", entities.VoteTypeUpvote, 1),
	}
	result := Evaluate(votes, 0.5)
	if !result.Reached {
		t.Fatalf("expected consensus reached")
	}
	if result.WinningOptionID != "opt-b" {
		t.Fatalf("tie must break to earliest crossing, got %s", result.WinningOptionID)
	}
}

func TestEvaluateHigherScoreBeatsEarlierCrossing(t *testing.T) {
	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeDownvote, 1),
		vote("opt-a", "u3", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u4", entities.VoteTypeUpvote, 1),
		vote("opt-b", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-b", "u2", entities.VoteTypeUpvote, 1),
	}
	result := Evaluate(votes, 0.5)
	if result.WinningOptionID != "opt-b" {
		t.Fatalf("strictly higher score must win regardless of order, got %s", result.WinningOptionID)
	}
	if result.WinningScore != 1.0 {
		t.Fatalf("expected score 1.0, got %f", result.WinningScore)
	}
}

func TestEvaluateEmptyLedger(t *testing.T) {
	result := Evaluate(nil, 0.5)
	if result.Reached {
		t.Fatalf("empty ledger must not reach consensus")
	}
	if len(result.Tallies) != 0 {
		t.Fatalf("expected no tallies, got %d", len(result.Tallies))
	}
}

func TestTopOption(t *testing.T) {
	if _, ok := TopOption(nil); ok {
		t.Fatalf("empty ledger has no top option")
	}

	votes := []entities.Vote{
		vote("opt-a", "u1", entities.VoteTypeUpvote, 1),
		vote("opt-a", "u2", entities.VoteTypeDownvote, 1),
		vote("opt-b", "u1", entities.VoteTypeUpvote, 1),
	}
	top, ok := TopOption(votes)
	if !ok {
		t.Fatalf("expected a top option")
	}
	if top.OptionID != "opt-b" {
		t.Fatalf("expected opt-b on top, got %s", top.OptionID)
	}
}
