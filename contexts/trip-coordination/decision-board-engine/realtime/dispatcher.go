package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// Dispatcher delivers board events at-most-once: synchronously to every local
// registrant, then fire-and-forget to the distributed bus. A nil Publisher
// disables the distributed tier; local fan-out is always active. Bus failures
// never propagate to the triggering write.
type Dispatcher struct {
	Registry  *Registry
	Publisher ports.EventPublisher
	IDGen     ports.IDGenerator
	Topic     string
	Origin    string
	Logger    *slog.Logger
}

func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) {
	logger := d.logger()
	event.Origin = d.Origin

	d.deliverLocal(event)

	if d.Publisher == nil {
		return
	}
	envelope, err := d.envelope(ctx, event)
	if err != nil {
		logger.Warn("realtime event encode failed",
			"event", "realtime_encode_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "realtime",
			"board_id", event.BoardID,
			"error", err.Error(),
		)
		return
	}
	if err := d.Publisher.Publish(ctx, d.Topic, envelope); err != nil {
		logger.Warn("realtime bus publish failed",
			"event", "realtime_bus_publish_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "realtime",
			"board_id", event.BoardID,
			"event_type", string(event.Kind),
			"error", err.Error(),
		)
	}
}

// HandleRemote re-delivers an event published by a sibling instance to local
// registrants. Events that originated here were already delivered in Dispatch.
func (d *Dispatcher) HandleRemote(_ context.Context, envelope ports.EventEnvelope) error {
	var event events.Event
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		d.logger().Warn("realtime remote event decode failed",
			"event", "realtime_remote_decode_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "realtime",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return nil
	}
	if event.Origin != "" && event.Origin == d.Origin {
		return nil
	}
	d.deliverLocal(event)
	return nil
}

func (d *Dispatcher) deliverLocal(event events.Event) {
	for _, conn := range d.Registry.Subscribers(event.BoardID) {
		if err := conn.Send(event); err != nil {
			d.logger().Warn("realtime connection send failed",
				"event", "realtime_send_failed",
				"module", "trip-coordination/decision-board-engine",
				"layer", "realtime",
				"board_id", event.BoardID,
				"connection_id", conn.ID(),
				"error", err.Error(),
			)
		}
	}
}

func (d *Dispatcher) envelope(ctx context.Context, event events.Event) (ports.EventEnvelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	eventID := ""
	if d.IDGen != nil {
		if id, err := d.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
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

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

var _ ports.Notifier = (*Dispatcher)(nil)
