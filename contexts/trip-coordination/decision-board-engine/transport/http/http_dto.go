package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateBoardRequest struct {
	ConsensusThreshold float64 `json:"consensus_threshold"`
	VotingDeadline     string  `json:"voting_deadline"`
}

type BoardResponse struct {
	BoardID            string  `json:"board_id"`
	TripID             string  `json:"trip_id"`
	CreatorID          string  `json:"creator_id"`
	ConsensusThreshold float64 `json:"consensus_threshold"`
	VotingDeadline     string  `json:"voting_deadline"`
	Phase              string  `json:"phase"`
	WinningOptionID    string  `json:"winning_option_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type SubmitVoteRequest struct {
	OptionID string  `json:"option_id"`
	VoteType string  `json:"vote_type"`
	Weight   float64 `json:"weight,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

type VoteResponse struct {
	VoteID           string  `json:"vote_id"`
	BoardID          string  `json:"board_id"`
	OptionID         string  `json:"option_id"`
	VoterID          string  `json:"voter_id"`
	VoteType         string  `json:"vote_type"`
	Weight           float64 `json:"weight"`
	Comment          string  `json:"comment,omitempty"`
	ConsensusReached bool    `json:"consensus_reached"`
	WinningOptionID  string  `json:"winning_option_id,omitempty"`
}

type ForceDecisionRequest struct {
	WinningOptionID string `json:"winning_option_id"`
}

type ConsensusStatusResponse struct {
	BoardID         string `json:"board_id"`
	Reached         bool   `json:"reached"`
	WinningOptionID string `json:"winning_option_id,omitempty"`
}

type OptionTallyItem struct {
	OptionID          string  `json:"option_id"`
	WeightedUpvotes   float64 `json:"weighted_upvotes"`
	WeightedDownvotes float64 `json:"weighted_downvotes"`
	Score             float64 `json:"score"`
	VoteCount         int     `json:"vote_count"`
}

type BoardSummaryResponse struct {
	Board             BoardResponse    `json:"board"`
	TotalVotes        int              `json:"total_votes"`
	DistinctVoters    int              `json:"distinct_voters"`
	ConsensusReached  bool             `json:"consensus_reached"`
	TopOption         *OptionTallyItem `json:"top_option,omitempty"`
	ParticipationRate float64          `json:"participation_rate"`
}
