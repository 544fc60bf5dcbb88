package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
)

// Outbound event names.
const (
	EventUserJoinedRoom = "user_joined_room"
	EventReceiveMessage = "receive_message"
)

// UserDTO is the public view of an identity (no handle, no presence).
type UserDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

type UserJoinedRoom struct {
	Type string          `json:"type"`
	User UserDTO         `json:"user"`
	Room domain.RoomName `json:"room"`
}

type ReceiveMessage struct {
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Sender    string          `json:"sender"`
	Room      domain.RoomName `json:"room"`
	Timestamp time.Time       `json:"timestamp"`
}

// Coordinator is the root of the event flow: it maps connection handles to
// identities and joined rooms, dispatches inbound events to the managers
// and drives fan-out through the transport's subscription groups.
//
// Every entry point handles its own failures: a store error is logged and
// the event dropped, the connection stays open and nothing is reported back
// to the client (known protocol limitation, kept as-is).
type Coordinator struct {
	Presence   *Presence
	Membership *Membership
	Pipeline   *Pipeline
	Bindings   *Bindings
	Groups     Broadcaster

	// StoreTimeout bounds each store-touching event; an overrun counts as a
	// store failure. Zero means no bound.
	StoreTimeout time.Duration
}

// opCtx is deliberately detached from the connection's context: a
// disconnect racing an in-flight event must not cancel store writes that
// are already underway.
func (c *Coordinator) opCtx() (context.Context, context.CancelFunc) {
	if c.StoreTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.StoreTimeout)
}

// Connect registers a new transport connection.
func (c *Coordinator) Connect(id domain.ConnID) {
	c.Bindings.Connect(id)
}

// JoinRoom attaches the identity, adds it to the room, subscribes the
// connection to the room's group and announces the join to every current
// subscriber, the joiner included. Rejoins are idempotent on the stores but
// still announced, one broadcast per join event.
func (c *Coordinator) JoinRoom(id domain.ConnID, username string, roomName domain.RoomName) {
	ctx, cancel := c.opCtx()
	defer cancel()

	user, err := c.Presence.Attach(ctx, username, id)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("conn", string(id)).Msg("join_room dropped")
		return
	}
	room, err := c.Membership.Join(ctx, roomName, user.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("conn", string(id)).Msg("join_room dropped")
		return
	}

	// The connection may have closed while the writes were in flight. The
	// writes stand; only this handle's subscription is skipped.
	if c.Bindings.Bind(id, user.Username, room.Name) {
		c.Groups.Subscribe(room.Name, id)
	}

	c.Groups.Broadcast(room.Name, UserJoinedRoom{
		Type: EventUserJoinedRoom,
		User: UserDTO{ID: user.ID, Username: user.Username},
		Room: room.Name,
	})
	log.Info().Str("module", "app.coordinator").Str("user", user.Username).Str("room", string(room.Name)).Msg("user joined room")
}

// SendMessage pushes a message through the pipeline and fans it out to the
// room's subscribers. A (nil, nil) pipeline result means the send resolved
// to nothing and nothing is emitted.
func (c *Coordinator) SendMessage(id domain.ConnID, roomName domain.RoomName, sender, content string) {
	ctx, cancel := c.opCtx()
	defer cancel()

	msg, err := c.Pipeline.Send(ctx, roomName, sender, content)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("conn", string(id)).Msg("send_message dropped")
		return
	}
	if msg == nil {
		return
	}
	c.Groups.Broadcast(msg.Room, ReceiveMessage{
		Type:      EventReceiveMessage,
		Content:   msg.Content,
		Sender:    msg.Sender,
		Room:      msg.Room,
		Timestamp: msg.At,
	})
}

// Disconnect takes the identity offline and destroys the binding entry.
// Group eviction is the transport's job and has already happened by the
// time this runs.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	ctx, cancel := c.opCtx()
	defer cancel()

	user, err := c.Presence.Detach(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("conn", string(id)).Msg("detach failed")
	} else if user != nil {
		log.Info().Str("module", "app.coordinator").Str("user", user.Username).Msg("disconnected")
	}
	c.Bindings.Remove(id)
}
