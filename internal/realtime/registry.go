package realtime

import (
	"sort"
	"sync"
)

// Client is one live connection as seen by the registry.
// The transport (websocket) lives in the handler; ID is unique per connection.
type Client interface {
	ID() string
	UserID() string
	Send(message []byte) bool
	Close()
}

// Registry maps each online user to their single active connection.
// A later connection for the same user replaces the earlier one.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register records client as the connection for its user and returns the
// handle it replaced, if any. The replaced handle is not closed.
func (r *Registry) Register(client Client) Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.clients[client.UserID()]
	r.clients[client.UserID()] = client
	return prev
}

// Unregister removes client only if it is still the handle on record for
// its user. It reports whether an entry was removed.
func (r *Registry) Unregister(client Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.clients[client.UserID()]
	if !ok || cur.ID() != client.ID() {
		return false
	}
	delete(r.clients, client.UserID())
	return true
}

// Lookup returns the current connection for userID.
func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Snapshot returns the sorted ids of every online user.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clients returns the current connections. The slice is a copy.
func (r *Registry) Clients() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Len returns the number of online users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes and forgets every connection. Used at shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
