package commands

import (
	"context"
	"encoding/json"
	"errors"

	application "wayfarer/contexts/trip-coordination/decision-board-engine/application"
	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// errAlreadySettled aborts a mutateBoard apply when a concurrent writer
// already moved the board to a terminal phase. Never surfaced to callers.
var errAlreadySettled = errors.New("board already settled")

// emit hands a committed state change to the realtime dispatcher and appends
// it to the durable outbox. Neither path participates in the write's
// consistency boundary: failures are logged and swallowed.
func (uc *BoardUseCase) emit(ctx context.Context, event events.Event) {
	logger := application.ResolveLogger(uc.Logger)

	if uc.Notifier != nil {
		uc.Notifier.Dispatch(ctx, event)
	}

	if uc.Outbox == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("board event id generation failed",
			"event", "board_event_id_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", event.BoardID,
			"error", err.Error(),
		)
		return
	}
	envelope, err := newBoardEnvelope(eventID, event)
	if err != nil {
		logger.Warn("board event encoding failed",
			"event", "board_event_encode_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", event.BoardID,
			"error", err.Error(),
		)
		return
	}
	if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
		logger.Warn("board event outbox append failed",
			"event", "board_event_outbox_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "application",
			"board_id", event.BoardID,
			"event_type", string(event.Kind),
			"error", err.Error(),
		)
	}
}

// newBoardEnvelope wraps a board event for the outbox/bus. Events are
// partitioned by board so per-board ordering survives the relay.
func newBoardEnvelope(eventID string, event events.Event) (ports.EventEnvelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     string(event.Kind),
		SourceService: "decision-board-engine",
		OccurredAt:    event.OccurredAt.UTC(),
		PartitionKey:  event.BoardID,
		SchemaVersion: 1,
		Data:          data,
	}, nil
}
