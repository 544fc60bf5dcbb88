package signal

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
)

// Groups is the subscription-group table: room name -> live connections.
// It satisfies app.Broadcaster. Dropping a connection evicts it from every
// group, so the coordinator never has to unsubscribe anything.
type Groups struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*WsConn
	rooms map[domain.RoomName]map[domain.ConnID]struct{}
}

func NewGroups() *Groups {
	return &Groups{
		conns: make(map[domain.ConnID]*WsConn),
		rooms: make(map[domain.RoomName]map[domain.ConnID]struct{}),
	}
}

// Register makes a freshly accepted connection addressable by its handle.
func (g *Groups) Register(id domain.ConnID, c *WsConn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[id] = c
}

// Subscribe adds the connection to a room's group. A handle that already
// dropped is ignored.
func (g *Groups) Subscribe(room domain.RoomName, id domain.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.conns[id]; !ok {
		return
	}
	set, ok := g.rooms[room]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		g.rooms[room] = set
	}
	set[id] = struct{}{}
}

// Broadcast marshals v once and best-effort delivers it to every subscriber
// of the room. A full send buffer drops the frame for that connection only.
func (g *Groups) Broadcast(room domain.RoomName, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal.groups").Msg("broadcast marshal")
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for id := range g.rooms[room] {
		c, ok := g.conns[id]
		if !ok {
			continue
		}
		if err := c.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "signal.groups").Str("conn", string(id)).Str("room", string(room)).Msg("frame dropped")
		}
	}
}

// Drop removes a closed connection from the table and from every group it
// joined.
func (g *Groups) Drop(id domain.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, id)
	for room, set := range g.rooms {
		delete(set, id)
		if len(set) == 0 {
			delete(g.rooms, room)
		}
	}
}

// Subscribers reports the size of a room's group.
func (g *Groups) Subscribers(room domain.RoomName) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[room])
}
