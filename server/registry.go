package server

import (
	"sort"
	"sync"
)

// Conn is somewhere to send bytes to a client.
type Conn interface {
	Addr() string
	// Send queues framed bytes, never blocking. It's false if they were
	// dropped.
	Send(b []byte) bool
}

// Registry knows which connection each player is on.
type Registry struct {
	mu      sync.RWMutex
	players map[string]string
	conns   map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		players: map[string]string{},
		conns:   map[string]Conn{},
	}
}

// AddConn registers a new connection.
func (r *Registry) AddConn(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.Addr()] = c
}

// RemoveConn forgets a connection and every player on it, returning them.
func (r *Registry) RemoveConn(addr string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, addr)
	var gone []string
	for p, a := range r.players {
		if a == addr {
			delete(r.players, p)
			gone = append(gone, p)
		}
	}
	sort.Strings(gone)
	return gone
}

// Bind puts a player on a connection. A player stays on their connection
// until it goes away.
func (r *Registry) Bind(player, addr string) error {
	r.mu.RLock()
	current, bound := r.players[player]
	r.mu.RUnlock()
	if bound && current == addr {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if current, bound := r.players[player]; bound {
		if current == addr {
			return nil
		}
		if _, live := r.conns[current]; live {
			return ErrPlayerBound
		}
	}
	r.players[player] = addr
	return nil
}

// Lookup finds a player's connection.
func (r *Registry) Lookup(player string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.players[player]
	if !ok {
		return nil, false
	}
	c, ok := r.conns[addr]
	return c, ok
}

// Conn finds a connection by address.
func (r *Registry) Conn(addr string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[addr]
	return c, ok
}

// Count is how many connections there are.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
