package ports

import (
	"context"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
)

// BoardRepository persists board aggregates. UpdateBoard is conditional on the
// expected version and fails with ErrVersionConflict when another writer
// committed first; that conflict drives the bounded retry loop in commands.
type BoardRepository interface {
	CreateBoard(ctx context.Context, board entities.Board) error
	GetBoard(ctx context.Context, boardID string) (entities.Board, error)
	GetActiveBoardByTrip(ctx context.Context, tripID string) (entities.Board, bool, error)
	UpdateBoard(ctx context.Context, board entities.Board, expectedVersion int64) error
	ListExpiredVotingBoards(ctx context.Context, now time.Time, limit int) ([]entities.Board, error)
}

// VoteLedger is the append-only vote record. AppendVote enforces the
// one-vote-per-(board, voter, option) invariant at write time and fails with
// ErrDuplicateVote. ListVotesByBoard returns votes in commit order.
type VoteLedger interface {
	AppendVote(ctx context.Context, vote entities.Vote) error
	ListVotesByBoard(ctx context.Context, boardID string) ([]entities.Vote, error)
	HasVote(ctx context.Context, boardID string, voterID string, optionID string) (bool, error)
}

// TripDirectory resolves trip membership. Owned by the trip-management module;
// consumed here read-only.
type TripDirectory interface {
	IsMember(ctx context.Context, tripID string, userID string) (bool, error)
	IsOrganizer(ctx context.Context, tripID string, userID string) (bool, error)
	EligibleVoterCount(ctx context.Context, tripID string) (int, error)
}

// ItineraryCatalog resolves candidate itinerary options.
type ItineraryCatalog interface {
	OptionBelongsToTrip(ctx context.Context, optionID string, tripID string) (bool, error)
}

// Notifier fans a board event out to live connections. Delivery is
// at-most-once and best-effort; implementations must never fail the
// triggering write.
type Notifier interface {
	Dispatch(ctx context.Context, event events.Event)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the wire shape published to the distributed bus and stored
// in the outbox.
type EventEnvelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAt    time.Time `json:"occurred_at"`
	PartitionKey  string    `json:"partition_key"`
	SchemaVersion int       `json:"schema_version"`
	Data          []byte    `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter appends durable integration events. Writers treat append
// failures as non-fatal for the triggering operation; the relay worker owns
// delivery.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}
