package registry

import (
	"context"
	"sync"
)

// Transport is one open duplex channel owned by a user. The registry only
// needs to know whether it is open, how to send bytes, and how to close it.
type Transport interface {
	IsOpen() bool
	Send(payload []byte) error
	Close() error
}

// ErrorReporter receives transport failures observed during fan-out.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// Conn is a live connection plus its presence flags. Active tracks whether
// the owning client's UI is foregrounded; PeerInFocus is the user the owner
// is currently viewing a conversation with (0 when none).
type Conn struct {
	Owner       int
	Transport   Transport
	Active      bool
	PeerInFocus int
}

// Registry is the authoritative in-memory index of which users are reachable
// right now and how. A user may own several connections at once (multi-device);
// removing the last one removes the user's slot entirely.
type Registry struct {
	mu       sync.RWMutex
	conns    map[int][]*Conn
	reporter ErrorReporter
}

// New creates an empty registry.
func New(reporter ErrorReporter) *Registry {
	return &Registry{
		conns:    make(map[int][]*Conn),
		reporter: reporter,
	}
}

// Add registers a new connection for a user. New connections start active
// with no conversation in focus.
func (r *Registry) Add(userID int, transport Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = append(r.conns[userID], &Conn{
		Owner:     userID,
		Transport: transport,
		Active:    true,
	})
}

// Remove drops the connection matching the given transport. Removing an
// already-absent connection is a no-op. Empty slots are deleted so the
// registry never holds entries for fully disconnected users.
func (r *Registry) Remove(userID int, transport Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.conns[userID]
	if !ok {
		return
	}
	kept := conns[:0]
	for _, c := range conns {
		if c.Transport != transport {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(r.conns, userID)
		return
	}
	r.conns[userID] = kept
}

// ActiveConnections returns value snapshots of the user's connections whose
// transport is still open, with the presence flags as observed at call time.
// All mutation goes through the registry's own methods. Closed connections
// are pruned as a side effect; this lazy sweep is the only garbage collection
// the registry does.
func (r *Registry) ActiveConnections(userID int) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.conns[userID]
	if !ok {
		return nil
	}
	open := conns[:0]
	for _, c := range conns {
		if c.Transport.IsOpen() {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		delete(r.conns, userID)
		return nil
	}
	r.conns[userID] = open
	out := make([]Conn, len(open))
	for i, c := range open {
		out[i] = *c
	}
	return out
}

// Broadcast sends an already-serialized payload to every open connection
// owned by userID. A failure on one connection never aborts the remaining
// fan-out: the error is reported, the broken connection is closed and
// removed, and the loop moves on.
func (r *Registry) Broadcast(userID int, payload []byte) {
	r.mu.RLock()
	conns := make([]*Conn, len(r.conns[userID]))
	copy(conns, r.conns[userID])
	r.mu.RUnlock()

	for _, c := range conns {
		if !c.Transport.IsOpen() {
			continue
		}
		if err := c.Transport.Send(payload); err != nil {
			if r.reporter != nil {
				r.reporter.Report(context.Background(), err)
			}
			_ = c.Transport.Close()
			r.Remove(userID, c.Transport)
		}
	}
}

// SetPresence applies the given flags to every connection the user currently
// owns. Presence is per-user: an update always fans out to all of the user's
// devices, never to a single connection.
func (r *Registry) SetPresence(userID int, active bool, peerInFocus int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns[userID] {
		c.Active = active
		c.PeerInFocus = peerInFocus
	}
}
