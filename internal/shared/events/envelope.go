package events

import "time"

// Topics carried on the distributed bus. The realtime topic fans board events
// out to sibling API instances; the lifecycle topic feeds downstream contexts
// through the outbox relay.
const (
	TopicBoardRealtime  = "trip-coordination.board-events.realtime"
	TopicBoardLifecycle = "trip-coordination.board-events.lifecycle"
)

// Envelope is the shared event shape used across Wayfarer.
// Align fields with repository canonical event contract.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	CorrelationID  string    `json:"correlation_id"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}
