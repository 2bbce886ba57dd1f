// Package realtime fans board events out to live connections. Local delivery
// goes straight to every connection joined to the board's channel; the
// distributed tier re-publishes the event on the bus so sibling instances can
// serve their own registrants.
package realtime

import (
	"sync"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/events"
)

// Connection is one live client subscription target. Send must not block
// indefinitely; transports buffer per connection and drop on overflow.
type Connection interface {
	ID() string
	Send(event events.Event) error
}

// Registry tracks which connections are joined to which board channels.
// Membership changes only through Join/Leave/Drop, never through dispatch.
type Registry struct {
	mu      sync.RWMutex
	byBoard map[string]map[string]Connection
}

func NewRegistry() *Registry {
	return &Registry{byBoard: make(map[string]map[string]Connection)}
}

func (r *Registry) Join(conn Connection, boardID string) {
	if conn == nil || boardID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	channel, ok := r.byBoard[boardID]
	if !ok {
		channel = make(map[string]Connection)
		r.byBoard[boardID] = channel
	}
	channel[conn.ID()] = conn
}

func (r *Registry) Leave(conn Connection, boardID string) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if channel, ok := r.byBoard[boardID]; ok {
		delete(channel, conn.ID())
		if len(channel) == 0 {
			delete(r.byBoard, boardID)
		}
	}
}

// Drop removes a disconnected connection from every channel.
func (r *Registry) Drop(conn Connection) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for boardID, channel := range r.byBoard {
		delete(channel, conn.ID())
		if len(channel) == 0 {
			delete(r.byBoard, boardID)
		}
	}
}

// Subscribers snapshots the connections joined to a board channel.
func (r *Registry) Subscribers(boardID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channel := r.byBoard[boardID]
	if len(channel) == 0 {
		return nil
	}
	conns := make([]Connection, 0, len(channel))
	for _, conn := range channel {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) Subscribed(connID string, boardID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byBoard[boardID][connID]
	return ok
}
