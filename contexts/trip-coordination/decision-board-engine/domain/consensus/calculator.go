// Package consensus computes option scores and the consensus decision for a
// decision board. It is pure: callers pass the board threshold and the full
// vote ledger in commit order and apply the result themselves.
package consensus

import (
	"sort"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
)

// OptionTally is the per-option aggregate over the ledger. Score is
// weighted upvotes over directional weighted total; abstain votes are excluded
// from both numerator and denominator.
type OptionTally struct {
	OptionID          string
	WeightedUpvotes   float64
	WeightedDownvotes float64
	WeightedTotal     float64
	Score             float64
	VoteCount         int
}

type Result struct {
	Reached         bool
	WinningOptionID string
	WinningScore    float64
	Tallies         []OptionTally
}

type runningTally struct {
	up         float64
	down       float64
	votes      int
	firstCross int
}

// Evaluate replays the ledger in commit order. An option is a candidate when
// its final score meets the threshold over at least one directional vote. The
// winner is the candidate with the strictly highest score; ties break to the
// option whose running score crossed the threshold earliest in commit order.
func Evaluate(votes []entities.Vote, threshold float64) Result {
	running := make(map[string]*runningTally)
	order := make([]string, 0)

	for index, vote := range votes {
		tally, ok := running[vote.OptionID]
		if !ok {
			tally = &runningTally{firstCross: -1}
			running[vote.OptionID] = tally
			order = append(order, vote.OptionID)
		}
		tally.votes++
		switch vote.Type {
		case entities.VoteTypeUpvote:
			tally.up += vote.Weight
		case entities.VoteTypeDownvote:
			tally.down += vote.Weight
		}
		if tally.firstCross < 0 && tally.up+tally.down > 0 {
			if tally.up/(tally.up+tally.down) >= threshold {
				tally.firstCross = index
			}
		}
	}

	result := Result{Tallies: make([]OptionTally, 0, len(order))}
	winnerCross := -1
	for _, optionID := range order {
		tally := running[optionID]
		final := OptionTally{
			OptionID:          optionID,
			WeightedUpvotes:   tally.up,
			WeightedDownvotes: tally.down,
			WeightedTotal:     tally.up + tally.down,
			VoteCount:         tally.votes,
		}
		if final.WeightedTotal > 0 {
			final.Score = final.WeightedUpvotes / final.WeightedTotal
		}
		result.Tallies = append(result.Tallies, final)

		candidate := final.WeightedTotal > 0 && final.Score >= threshold
		if !candidate {
			continue
		}
		cross := tally.firstCross
		if cross < 0 {
			cross = len(votes)
		}
		switch {
		case !result.Reached,
			final.Score > result.WinningScore,
			final.Score == result.WinningScore && cross < winnerCross:
			result.Reached = true
			result.WinningOptionID = optionID
			result.WinningScore = final.Score
			winnerCross = cross
		}
	}

	sort.SliceStable(result.Tallies, func(i, j int) bool {
		return result.Tallies[i].Score > result.Tallies[j].Score
	})
	return result
}

// TopOption returns the highest scoring option regardless of threshold, for
// board summaries. Second return is false on an empty ledger.
func TopOption(votes []entities.Vote) (OptionTally, bool) {
	result := Evaluate(votes, entities.MaxConsensusThreshold+1)
	if len(result.Tallies) == 0 {
		return OptionTally{}, false
	}
	return result.Tallies[0], true
}
