package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter used by tests and local development. It
// implements every port the decision-board engine consumes, including the
// membership/option projections owned by other contexts.
type Store struct {
	mu sync.RWMutex

	boards map[string]entities.Board
	votes  []entities.Vote
	voted  map[string]struct{} // boardID|voterID|optionID

	members   map[string]map[string]bool // tripID -> userID -> organizer
	options   map[string]string          // optionID -> tripID
	outbox    map[string]outboxRecord
	outboxSeq []string
}

func NewStore() *Store {
	return &Store{
		boards:  make(map[string]entities.Board),
		voted:   make(map[string]struct{}),
		members: make(map[string]map[string]bool),
		options: make(map[string]string),
		outbox:  make(map[string]outboxRecord),
	}
}

// SetMember seeds a trip membership projection row.
func (s *Store) SetMember(tripID string, userID string, organizer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tripID = strings.TrimSpace(tripID)
	if s.members[tripID] == nil {
		s.members[tripID] = make(map[string]bool)
	}
	s.members[tripID][strings.TrimSpace(userID)] = organizer
}

// SetOption seeds an itinerary option projection row.
func (s *Store) SetOption(optionID string, tripID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[strings.TrimSpace(optionID)] = strings.TrimSpace(tripID)
}

func (s *Store) CreateBoard(_ context.Context, board entities.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	boardID := strings.TrimSpace(board.BoardID)
	if _, exists := s.boards[boardID]; exists {
		return domainerrors.ErrBoardExists
	}
	for _, existing := range s.boards {
		if existing.TripID == board.TripID && !existing.Phase.Terminal() {
			return domainerrors.ErrBoardExists
		}
	}
	s.boards[boardID] = board
	return nil
}

func (s *Store) GetBoard(_ context.Context, boardID string) (entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[strings.TrimSpace(boardID)]
	if !ok {
		return entities.Board{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s *Store) GetActiveBoardByTrip(_ context.Context, tripID string) (entities.Board, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tripID = strings.TrimSpace(tripID)
	for _, board := range s.boards {
		if board.TripID == tripID && !board.Phase.Terminal() {
			return board, true, nil
		}
	}
	return entities.Board{}, false, nil
}

func (s *Store) UpdateBoard(_ context.Context, board entities.Board, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	boardID := strings.TrimSpace(board.BoardID)
	existing, ok := s.boards[boardID]
	if !ok {
		return domainerrors.ErrBoardNotFound
	}
	if existing.Version != expectedVersion {
		return domainerrors.ErrVersionConflict
	}
	s.boards[boardID] = board
	return nil
}

func (s *Store) ListExpiredVotingBoards(_ context.Context, now time.Time, limit int) ([]entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.Board, 0)
	for _, board := range s.boards {
		if board.Phase == entities.PhaseVoting && now.UTC().After(board.VotingDeadline.UTC()) {
			items = append(items, board)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VotingDeadline.Before(items[j].VotingDeadline)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AppendVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.BoardID, vote.VoterID, vote.OptionID)
	if _, exists := s.voted[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.voted[key] = struct{}{}
	s.votes = append(s.votes, vote)
	return nil
}

// ListVotesByBoard returns the board's ledger in commit order.
func (s *Store) ListVotesByBoard(_ context.Context, boardID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	boardID = strings.TrimSpace(boardID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.BoardID == boardID {
			items = append(items, vote)
		}
	}
	return items, nil
}

func (s *Store) HasVote(_ context.Context, boardID string, voterID string, optionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voted[voteKey(boardID, voterID, optionID)]
	return ok, nil
}

func (s *Store) IsMember(_ context.Context, tripID string, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[strings.TrimSpace(tripID)][strings.TrimSpace(userID)]
	return ok, nil
}

func (s *Store) IsOrganizer(_ context.Context, tripID string, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	organizer, ok := s.members[strings.TrimSpace(tripID)][strings.TrimSpace(userID)]
	return ok && organizer, nil
}

func (s *Store) EligibleVoterCount(_ context.Context, tripID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members[strings.TrimSpace(tripID)]), nil
}

func (s *Store) OptionBelongsToTrip(_ context.Context, optionID string, tripID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.options[strings.TrimSpace(optionID)]
	return ok && owner == strings.TrimSpace(tripID), nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	s.outboxSeq = append(s.outboxSeq, outboxID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, outboxID := range s.outboxSeq {
		row := s.outbox[outboxID]
		if row.published {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func voteKey(boardID string, voterID string, optionID string) string {
	return strings.TrimSpace(boardID) + "|" + strings.TrimSpace(voterID) + "|" + strings.TrimSpace(optionID)
}

var _ ports.BoardRepository = (*Store)(nil)
var _ ports.VoteLedger = (*Store)(nil)
var _ ports.TripDirectory = (*Store)(nil)
var _ ports.ItineraryCatalog = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
