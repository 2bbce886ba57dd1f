package entities

import "time"

type VoteType string

const (
	VoteTypeUpvote   VoteType = "upvote"
	VoteTypeDownvote VoteType = "downvote"
	VoteTypeAbstain  VoteType = "abstain"
)

func (t VoteType) Valid() bool {
	return t == VoteTypeUpvote || t == VoteTypeDownvote || t == VoteTypeAbstain
}

// Directional reports whether the vote expresses a preference. Abstain votes
// count toward participation but never toward an option's score.
func (t VoteType) Directional() bool {
	return t == VoteTypeUpvote || t == VoteTypeDownvote
}

const (
	DefaultVoteWeight = 1.0
	MaxCommentLength  = 500
)

// Vote is one append-only ledger entry. At most one vote may exist per
// (board, voter, option) tuple; votes are never mutated or deleted.
type Vote struct {
	VoteID    string
	BoardID   string
	OptionID  string
	VoterID   string
	Type      VoteType
	Weight    float64
	Comment   string
	CreatedAt time.Time
}
