package realtime

import (
	"context"
	"errors"
	"log/slog"

	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// FanoutConsumer subscribes to the realtime board topic and replays events
// from sibling instances into the local registry. Delivery stays at-most-once:
// there is no replay of events missed while disconnected.
type FanoutConsumer struct {
	Subscriber    ports.EventSubscriber
	Dispatcher    *Dispatcher
	Topic         string
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c FanoutConsumer) Start(ctx context.Context) error {
	if c.Subscriber == nil || c.Dispatcher == nil {
		return errors.New("fanout consumer requires a subscriber and a dispatcher")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("realtime fanout consumer starting",
		"event", "realtime_fanout_starting",
		"module", "trip-coordination/decision-board-engine",
		"layer", "realtime",
		"topic", c.Topic,
		"consumer_group", c.ConsumerGroup,
	)
	return c.Subscriber.Subscribe(ctx, c.Topic, c.ConsumerGroup, c.Dispatcher.HandleRemote)
}
