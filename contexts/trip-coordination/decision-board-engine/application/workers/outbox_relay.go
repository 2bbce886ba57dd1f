package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "wayfarer/contexts/trip-coordination/decision-board-engine/application"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// OutboxRelay publishes persisted board lifecycle events to the distributed
// bus for downstream contexts (activity feeds, notification digests).
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after the bus accepted it. It stops on the first failure so
// the next cycle reprocesses remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("board outbox list failed",
			"event", "board_outbox_list_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("board outbox decode failed",
				"event", "board_outbox_decode_failed",
				"module", "trip-coordination/decision-board-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, r.Topic, envelope); err != nil {
			logger.Error("board outbox publish failed",
				"event", "board_outbox_publish_failed",
				"module", "trip-coordination/decision-board-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("board outbox mark published failed",
				"event", "board_outbox_mark_published_failed",
				"module", "trip-coordination/decision-board-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("board outbox relay cycle completed",
		"event", "board_outbox_relay_completed",
		"module", "trip-coordination/decision-board-engine",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
