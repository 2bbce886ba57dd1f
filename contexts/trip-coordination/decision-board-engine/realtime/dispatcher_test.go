package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

type fakeConn struct {
	id   string
	mu   sync.Mutex
	got  []events.Event
	fail bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.got = append(c.got, event)
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []ports.EventEnvelope
	fail      bool
}

func (p *fakePublisher) Publish(_ context.Context, _ string, envelope ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.published = append(p.published, envelope)
	return nil
}

func boardEvent(boardID string) events.Event {
	return events.Event{
		BoardID:    boardID,
		Kind:       events.KindBoardUpdated,
		OccurredAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		BoardUpdated: &events.BoardUpdatedPayload{
			Phase: "voting",
		},
	}
}

func TestRegistryMembership(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{id: "c1"}

	registry.Join(conn, "board-1")
	if !registry.Subscribed("c1", "board-1") {
		t.Fatalf("expected c1 subscribed to board-1")
	}
	if registry.Subscribed("c1", "board-2") {
		t.Fatalf("c1 must not be subscribed to board-2")
	}

	registry.Leave(conn, "board-1")
	if registry.Subscribed("c1", "board-1") {
		t.Fatalf("leave must remove the subscription")
	}

	registry.Join(conn, "board-1")
	registry.Join(conn, "board-2")
	registry.Drop(conn)
	if registry.Subscribed("c1", "board-1") || registry.Subscribed("c1", "board-2") {
		t.Fatalf("drop must remove the connection everywhere")
	}
}

func TestDispatchDeliversToSubscribedOnly(t *testing.T) {
	registry := NewRegistry()
	subscribed := &fakeConn{id: "c1"}
	other := &fakeConn{id: "c2"}
	registry.Join(subscribed, "board-1")
	registry.Join(other, "board-2")

	dispatcher := &Dispatcher{Registry: registry, Origin: "api-1"}
	dispatcher.Dispatch(context.Background(), boardEvent("board-1"))

	if subscribed.received() != 1 {
		t.Fatalf("subscribed connection expected 1 event, got %d", subscribed.received())
	}
	if other.received() != 0 {
		t.Fatalf("other board's connection must receive nothing")
	}
}

func TestDispatchSurvivesConnectionFailure(t *testing.T) {
	registry := NewRegistry()
	bad := &fakeConn{id: "bad", fail: true}
	good := &fakeConn{id: "good"}
	registry.Join(bad, "board-1")
	registry.Join(good, "board-1")

	dispatcher := &Dispatcher{Registry: registry, Origin: "api-1"}
	dispatcher.Dispatch(context.Background(), boardEvent("board-1"))

	if good.received() != 1 {
		t.Fatalf("healthy connection must still receive the event")
	}
}

func TestDispatchPublishesToBus(t *testing.T) {
	registry := NewRegistry()
	publisher := &fakePublisher{}
	dispatcher := &Dispatcher{
		Registry:  registry,
		Publisher: publisher,
		Topic:     "board-events",
		Origin:    "api-1",
	}

	dispatcher.Dispatch(context.Background(), boardEvent("board-1"))

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 bus publish, got %d", len(publisher.published))
	}
	envelope := publisher.published[0]
	if envelope.EventType != string(events.KindBoardUpdated) {
		t.Fatalf("unexpected event type %s", envelope.EventType)
	}
	if envelope.PartitionKey != "board-1" {
		t.Fatalf("partition key must be the board id, got %s", envelope.PartitionKey)
	}

	var decoded events.Event
	if err := json.Unmarshal(envelope.Data, &decoded); err != nil {
		t.Fatalf("envelope data must decode: %v", err)
	}
	if decoded.Origin != "api-1" {
		t.Fatalf("origin must be stamped before publish, got %q", decoded.Origin)
	}
}

func TestDispatchToleratesBusFailure(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{id: "c1"}
	registry.Join(conn, "board-1")

	dispatcher := &Dispatcher{
		Registry:  registry,
		Publisher: &fakePublisher{fail: true},
		Topic:     "board-events",
		Origin:    "api-1",
	}

	// Must not panic or fail: local delivery happened, bus failure is logged.
	dispatcher.Dispatch(context.Background(), boardEvent("board-1"))
	if conn.received() != 1 {
		t.Fatalf("local delivery must precede the bus publish")
	}
}

func TestHandleRemoteSkipsOwnOrigin(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{id: "c1"}
	registry.Join(conn, "board-1")
	dispatcher := &Dispatcher{Registry: registry, Origin: "api-1"}

	own := boardEvent("board-1")
	own.Origin = "api-1"
	remote := boardEvent("board-1")
	remote.Origin = "api-2"

	for _, event := range []events.Event{own, remote} {
		data, err := json.Marshal(event)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if err := dispatcher.HandleRemote(context.Background(), ports.EventEnvelope{Data: data}); err != nil {
			t.Fatalf("handle remote failed: %v", err)
		}
	}

	if conn.received() != 1 {
		t.Fatalf("expected only the sibling event delivered, got %d", conn.received())
	}
}

func TestHandleRemoteIgnoresGarbage(t *testing.T) {
	dispatcher := &Dispatcher{Registry: NewRegistry(), Origin: "api-1"}
	if err := dispatcher.HandleRemote(context.Background(), ports.EventEnvelope{Data: []byte("not-json")}); err != nil {
		t.Fatalf("undecodable remote events must be dropped, got %v", err)
	}
}
