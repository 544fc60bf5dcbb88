package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Chatter/internal/domain"
)

func namesOf(rooms []domain.RoomName) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, string(r))
	}
	return out
}

func TestBindings_Lifecycle(t *testing.T) {
	req := require.New(t)
	b := NewBindings()

	b.Connect("c1")
	req.Equal(1, b.Len())

	// Unbound until a join attaches an identity.
	_, bound := b.Username("c1")
	req.False(bound)

	req.True(b.Bind("c1", "alice", "lobby"))
	name, bound := b.Username("c1")
	req.True(bound)
	req.Equal("alice", name)

	req.True(b.Bind("c1", "alice", "games"))
	req.ElementsMatch([]string{"lobby", "games"}, namesOf(b.Rooms("c1")))

	b.Remove("c1")
	req.Equal(0, b.Len())
	req.Nil(b.Rooms("c1"))
}

func TestBindings_BindOnClosedConnection(t *testing.T) {
	req := require.New(t)
	b := NewBindings()

	// Never connected, or already removed: binding must refuse.
	req.False(b.Bind("gone", "alice", "lobby"))

	b.Connect("c1")
	b.Remove("c1")
	req.False(b.Bind("c1", "alice", "lobby"))
}

func TestBindings_ConnectIsIdempotent(t *testing.T) {
	req := require.New(t)
	b := NewBindings()

	b.Connect("c1")
	req.True(b.Bind("c1", "alice", "lobby"))
	// A duplicate connect must not wipe the bound state.
	b.Connect("c1")
	name, bound := b.Username("c1")
	req.True(bound)
	req.Equal("alice", name)
}
