// Package events defines the board lifecycle events fanned out to connected
// clients. Each kind carries its own fixed payload; exactly one payload field
// is set per event.
package events

import "time"

type Kind string

const (
	KindBoardCreated     Kind = "board:created"
	KindVoteCast         Kind = "vote:cast"
	KindConsensusReached Kind = "consensus:reached"
	KindBoardUpdated     Kind = "board:updated"
)

type BoardCreatedPayload struct {
	TripID             string  `json:"trip_id"`
	CreatorID          string  `json:"creator_id"`
	InvitedMemberCount int     `json:"invited_member_count"`
	ConsensusThreshold float64 `json:"consensus_threshold"`
	VotingDeadline     string  `json:"voting_deadline"`
}

type VoteCastPayload struct {
	VoteID            string  `json:"vote_id"`
	VoterID           string  `json:"voter_id"`
	OptionID          string  `json:"option_id"`
	VoteType          string  `json:"vote_type"`
	TotalVotes        int     `json:"total_votes"`
	ConsensusProgress float64 `json:"consensus_progress"`
}

type ConsensusReachedPayload struct {
	WinningOptionID string  `json:"winning_option_id"`
	Threshold       float64 `json:"threshold"`
	FinalVoteCount  int     `json:"final_vote_count"`
	WinningScore    float64 `json:"winning_score"`
	Forced          bool    `json:"forced"`
}

type BoardUpdatedPayload struct {
	Phase           string  `json:"phase"`
	WinningOptionID *string `json:"winning_option_id,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// Event is the tagged variant delivered to board channel subscribers. Origin
// identifies the emitting server instance so cross-instance fan-out can skip
// events already delivered locally.
type Event struct {
	BoardID    string    `json:"board_id"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Origin     string    `json:"origin,omitempty"`

	BoardCreated     *BoardCreatedPayload     `json:"board_created,omitempty"`
	VoteCast         *VoteCastPayload         `json:"vote_cast,omitempty"`
	ConsensusReached *ConsensusReachedPayload `json:"consensus_reached,omitempty"`
	BoardUpdated     *BoardUpdatedPayload     `json:"board_updated,omitempty"`
}
