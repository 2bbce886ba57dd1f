package entities

import "time"

type BoardPhase string

const (
	PhaseDiscussion BoardPhase = "discussion"
	PhaseVoting     BoardPhase = "voting"
	PhaseDecided    BoardPhase = "decided"
	PhaseCancelled  BoardPhase = "cancelled"
)

// CanTransitionTo encodes the board lifecycle: discussion -> voting -> decided,
// with cancelled reachable from any non-terminal phase. Terminal phases never
// transition again and discussion is never re-entered.
func (p BoardPhase) CanTransitionTo(next BoardPhase) bool {
	switch p {
	case PhaseDiscussion:
		return next == PhaseVoting || next == PhaseCancelled
	case PhaseVoting:
		return next == PhaseDecided || next == PhaseCancelled
	default:
		return false
	}
}

func (p BoardPhase) Terminal() bool {
	return p == PhaseDecided || p == PhaseCancelled
}

const (
	MinConsensusThreshold = 0.5
	MaxConsensusThreshold = 1.0
)

// Board is the aggregate governing one trip's group decision. Version backs the
// optimistic per-board write serialization; WinningOptionID is non-nil exactly
// when Phase is decided.
type Board struct {
	BoardID            string
	TripID             string
	CreatorID          string
	ConsensusThreshold float64
	VotingDeadline     time.Time
	Phase              BoardPhase
	WinningOptionID    *string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Transition applies a guarded phase change. The winning option must be set
// exactly on entry into decided and on no other transition.
func (b *Board) Transition(next BoardPhase, winningOptionID *string, now time.Time) bool {
	if !b.Phase.CanTransitionTo(next) {
		return false
	}
	if next == PhaseDecided {
		if winningOptionID == nil {
			return false
		}
		winner := *winningOptionID
		b.WinningOptionID = &winner
	}
	b.Phase = next
	b.UpdatedAt = now.UTC()
	return true
}

func (b Board) DeadlineExpired(now time.Time) bool {
	return now.UTC().After(b.VotingDeadline.UTC())
}

func ValidThreshold(threshold float64) bool {
	return threshold >= MinConsensusThreshold && threshold <= MaxConsensusThreshold
}
