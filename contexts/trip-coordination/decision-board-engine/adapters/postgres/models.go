package postgresadapter

import (
	"strings"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
)

type boardModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	TripID             string     `gorm:"column:trip_id;index"`
	CreatorID          string     `gorm:"column:creator_id"`
	ConsensusThreshold float64    `gorm:"column:consensus_threshold"`
	VotingDeadline     time.Time  `gorm:"column:voting_deadline"`
	Phase              string     `gorm:"column:phase"`
	WinningOptionID    *string    `gorm:"column:winning_option_id"`
	Version            int64      `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (boardModel) TableName() string {
	return "decision_boards"
}

func boardModelFromEntity(board entities.Board) boardModel {
	row := boardModel{
		ID:                 strings.TrimSpace(board.BoardID),
		TripID:             strings.TrimSpace(board.TripID),
		CreatorID:          strings.TrimSpace(board.CreatorID),
		ConsensusThreshold: board.ConsensusThreshold,
		VotingDeadline:     board.VotingDeadline.UTC(),
		Phase:              string(board.Phase),
		Version:            board.Version,
		CreatedAt:          board.CreatedAt.UTC(),
		UpdatedAt:          board.UpdatedAt.UTC(),
	}
	if board.WinningOptionID != nil {
		winner := strings.TrimSpace(*board.WinningOptionID)
		row.WinningOptionID = &winner
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m boardModel) toEntity() entities.Board {
	board := entities.Board{
		BoardID:            m.ID,
		TripID:             m.TripID,
		CreatorID:          m.CreatorID,
		ConsensusThreshold: m.ConsensusThreshold,
		VotingDeadline:     m.VotingDeadline.UTC(),
		Phase:              entities.BoardPhase(m.Phase),
		Version:            m.Version,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
	if m.WinningOptionID != nil {
		winner := strings.TrimSpace(*m.WinningOptionID)
		board.WinningOptionID = &winner
	}
	return board
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	BoardID   string    `gorm:"column:board_id;uniqueIndex:idx_board_voter_option"`
	VoterID   string    `gorm:"column:voter_id;uniqueIndex:idx_board_voter_option"`
	OptionID  string    `gorm:"column:option_id;uniqueIndex:idx_board_voter_option"`
	VoteType  string    `gorm:"column:vote_type"`
	Weight    float64   `gorm:"column:weight"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "itinerary_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		BoardID:   strings.TrimSpace(vote.BoardID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		OptionID:  strings.TrimSpace(vote.OptionID),
		VoteType:  string(vote.Type),
		Weight:    vote.Weight,
		Comment:   strings.TrimSpace(vote.Comment),
		CreatedAt: vote.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		BoardID:   m.BoardID,
		VoterID:   m.VoterID,
		OptionID:  m.OptionID,
		Type:      entities.VoteType(m.VoteType),
		Weight:    m.Weight,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// tripMemberModel and itineraryOptionModel read projection tables owned by
// the trip-management and itinerary-planning modules.
type tripMemberModel struct {
	TripID    string `gorm:"column:trip_id;primaryKey"`
	UserID    string `gorm:"column:user_id;primaryKey"`
	Organizer bool   `gorm:"column:organizer"`
}

func (tripMemberModel) TableName() string {
	return "trip_members"
}

type itineraryOptionModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	TripID string `gorm:"column:trip_id"`
}

func (itineraryOptionModel) TableName() string {
	return "itinerary_options"
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "decision_board_outbox"
}
