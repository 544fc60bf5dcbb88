package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Chatter/internal/domain"
	"github.com/dkeye/Chatter/internal/store"
)

type fakeBroadcaster struct {
	mu         sync.Mutex
	subscribed map[domain.RoomName][]domain.ConnID
	broadcasts []any
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{subscribed: make(map[domain.RoomName][]domain.ConnID)}
}

func (f *fakeBroadcaster) Subscribe(room domain.RoomName, id domain.ConnID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[room] = append(f.subscribed[room], id)
}

func (f *fakeBroadcaster) Broadcast(room domain.RoomName, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, v)
}

func (f *fakeBroadcaster) events() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any{}, f.broadcasts...)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeBroadcaster, *store.Messages) {
	t.Helper()
	users, rooms, messages := testStores(t)
	groups := newFakeBroadcaster()
	return &Coordinator{
		Presence:     NewPresence(users),
		Membership:   NewMembership(rooms),
		Pipeline:     NewPipeline(users, rooms, messages),
		Bindings:     NewBindings(),
		Groups:       groups,
		StoreTimeout: 5 * time.Second,
	}, groups, messages
}

func TestCoordinator_JoinCreatesRoomAndAnnounces(t *testing.T) {
	req := require.New(t)
	c, groups, _ := newTestCoordinator(t)

	c.Connect("c-alice")
	c.JoinRoom("c-alice", "alice", "lobby")

	room, err := c.Membership.rooms.Get(context.Background(), "lobby")
	req.NoError(err)
	req.Len(room.Members, 1)

	req.Equal([]domain.ConnID{"c-alice"}, groups.subscribed["lobby"])

	events := groups.events()
	req.Len(events, 1)
	joined, ok := events[0].(UserJoinedRoom)
	req.True(ok)
	req.Equal(EventUserJoinedRoom, joined.Type)
	req.Equal("alice", joined.User.Username)
	req.NotEmpty(joined.User.ID)
	req.Equal(domain.RoomName("lobby"), joined.Room)
}

func TestCoordinator_MessageFansOutToRoom(t *testing.T) {
	req := require.New(t)
	c, groups, messages := newTestCoordinator(t)

	c.Connect("c-alice")
	c.JoinRoom("c-alice", "alice", "lobby")
	c.Connect("c-bob")
	c.JoinRoom("c-bob", "bob", "lobby")

	c.SendMessage("c-alice", "lobby", "alice", "hi")

	events := groups.events()
	req.Len(events, 3) // two joins, one message
	msg, ok := events[2].(ReceiveMessage)
	req.True(ok)
	req.Equal(EventReceiveMessage, msg.Type)
	req.Equal("hi", msg.Content)
	req.Equal("alice", msg.Sender)
	req.Equal(domain.RoomName("lobby"), msg.Room)
	req.False(msg.Timestamp.IsZero())

	persisted, err := messages.List(context.Background(), "lobby", 0)
	req.NoError(err)
	req.Len(persisted, 1)
	req.Equal("alice", persisted[0].Sender)
}

func TestCoordinator_DoubleJoinOneMemberTwoAnnouncements(t *testing.T) {
	req := require.New(t)
	c, groups, _ := newTestCoordinator(t)

	c.Connect("c-alice")
	c.JoinRoom("c-alice", "alice", "lobby")
	c.JoinRoom("c-alice", "alice", "lobby")

	room, err := c.Membership.rooms.Get(context.Background(), "lobby")
	req.NoError(err)
	req.Len(room.Members, 1)

	req.Len(groups.events(), 2)
}

func TestCoordinator_UnresolvedSendEmitsNothing(t *testing.T) {
	req := require.New(t)
	c, groups, _ := newTestCoordinator(t)

	c.Connect("c-alice")
	c.SendMessage("c-alice", "lobby", "alice", "hi")

	req.Empty(groups.events())
}

func TestCoordinator_JoinAfterDisconnectSkipsSubscription(t *testing.T) {
	req := require.New(t)
	c, groups, _ := newTestCoordinator(t)

	// The connection closed before the in-flight join got processed: the
	// store writes must land, but the dead handle gets no subscription.
	c.Connect("c-alice")
	c.Bindings.Remove("c-alice")
	c.JoinRoom("c-alice", "alice", "lobby")

	room, err := c.Membership.rooms.Get(context.Background(), "lobby")
	req.NoError(err)
	req.Len(room.Members, 1)

	req.Empty(groups.subscribed["lobby"])
	// Group broadcast to whoever remains still goes out.
	req.Len(groups.events(), 1)
}

func TestCoordinator_DisconnectOfSupersededHandleKeepsUserOnline(t *testing.T) {
	req := require.New(t)
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	c.Connect("c1")
	c.JoinRoom("c1", "alice", "lobby")
	c.Connect("c2")
	c.JoinRoom("c2", "alice", "lobby")

	c.Disconnect("c1")

	u, err := c.Presence.users.Get(ctx, "alice")
	req.NoError(err)
	req.True(u.Online)
	req.Equal(domain.ConnID("c2"), u.Conn)

	c.Disconnect("c2")
	u, err = c.Presence.users.Get(ctx, "alice")
	req.NoError(err)
	req.False(u.Online)
}

func TestCoordinator_ConnectionAccumulatesRooms(t *testing.T) {
	req := require.New(t)
	c, groups, _ := newTestCoordinator(t)

	c.Connect("c-alice")
	c.JoinRoom("c-alice", "alice", "lobby")
	c.JoinRoom("c-alice", "alice", "games")

	req.ElementsMatch([]string{"lobby", "games"}, namesOf(c.Bindings.Rooms("c-alice")))
	req.Equal([]domain.ConnID{"c-alice"}, groups.subscribed["lobby"])
	req.Equal([]domain.ConnID{"c-alice"}, groups.subscribed["games"])
}
