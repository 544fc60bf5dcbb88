package app

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Chatter/internal/domain"
)

// ConnState is the per-connection state machine: Unbound until the first
// successful join attaches an identity, Bound after. Closed connections are
// simply removed from the table.
type ConnState int

const (
	StateUnbound ConnState = iota
	StateBound
)

type binding struct {
	State    ConnState
	Username string
	Rooms    map[domain.RoomName]struct{}
}

// Bindings maps live connection handles to the identity and the rooms
// joined over them. In-process only, owned by the coordinator, safe for
// concurrent event handlers. It is an injectable value, not a package
// global, so tests can run on a fresh table.
type Bindings struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*binding
}

func NewBindings() *Bindings {
	return &Bindings{conns: make(map[domain.ConnID]*binding)}
}

// Connect registers a freshly opened connection in StateUnbound.
func (b *Bindings) Connect(id domain.ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[id]; ok {
		return
	}
	b.conns[id] = &binding{State: StateUnbound, Rooms: make(map[domain.RoomName]struct{})}
	log.Info().Str("module", "app.bindings").Str("conn", string(id)).Msg("connection registered")
}

// Bind attaches an identity and records a joined room, moving the entry to
// StateBound. Returns false when the connection already closed; the caller
// must then skip any subscription for this handle.
func (b *Bindings) Bind(id domain.ConnID, username string, room domain.RoomName) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.conns[id]
	if !ok {
		return false
	}
	entry.State = StateBound
	entry.Username = username
	entry.Rooms[room] = struct{}{}
	return true
}

// Username returns the identity bound to id, if any.
func (b *Bindings) Username(id domain.ConnID) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.conns[id]
	if !ok || entry.State != StateBound {
		return "", false
	}
	return entry.Username, true
}

// Rooms returns the rooms joined over id.
func (b *Bindings) Rooms(id domain.ConnID) []domain.RoomName {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.conns[id]
	if !ok {
		return nil
	}
	return lo.Keys(entry.Rooms)
}

// Remove destroys the entry for a closed connection.
func (b *Bindings) Remove(id domain.ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, id)
	log.Info().Str("module", "app.bindings").Str("conn", string(id)).Msg("connection removed")
}

func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}
