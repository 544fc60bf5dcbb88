package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipeline_UnknownSenderDropsSilently(t *testing.T) {
	req := require.New(t)
	users, rooms, messages := testStores(t)
	p := NewPipeline(users, rooms, messages)
	ctx := context.Background()

	_, err := rooms.AddMember(ctx, "lobby", "u1")
	req.NoError(err)

	msg, err := p.Send(ctx, "lobby", "ghost", "hi")
	req.NoError(err)
	req.Nil(msg)

	persisted, err := messages.List(ctx, "lobby", 0)
	req.NoError(err)
	req.Empty(persisted)
}

func TestPipeline_UnknownRoomDropsSilently(t *testing.T) {
	req := require.New(t)
	users, rooms, messages := testStores(t)
	p := NewPipeline(users, rooms, messages)
	ctx := context.Background()

	_, err := users.SetConnection(ctx, "alice", "h1")
	req.NoError(err)

	msg, err := p.Send(ctx, "nowhere", "alice", "hi")
	req.NoError(err)
	req.Nil(msg)

	persisted, err := messages.List(ctx, "nowhere", 0)
	req.NoError(err)
	req.Empty(persisted)
}

func TestPipeline_SendPersists(t *testing.T) {
	req := require.New(t)
	users, rooms, messages := testStores(t)
	p := NewPipeline(users, rooms, messages)
	ctx := context.Background()

	alice, err := users.SetConnection(ctx, "alice", "h1")
	req.NoError(err)
	_, err = rooms.AddMember(ctx, "lobby", alice.ID)
	req.NoError(err)

	msg, err := p.Send(ctx, "lobby", "alice", "hi there")
	req.NoError(err)
	req.NotNil(msg)
	req.Equal("alice", msg.Sender)
	req.Equal(alice.ID, msg.SenderID)
	req.False(msg.At.IsZero())

	persisted, err := messages.List(ctx, "lobby", 0)
	req.NoError(err)
	req.Len(persisted, 1)
	req.Equal("hi there", persisted[0].Content)
}

func TestPipeline_EmptyContentAccepted(t *testing.T) {
	req := require.New(t)
	users, rooms, messages := testStores(t)
	p := NewPipeline(users, rooms, messages)
	ctx := context.Background()

	alice, err := users.SetConnection(ctx, "alice", "h1")
	req.NoError(err)
	_, err = rooms.AddMember(ctx, "lobby", alice.ID)
	req.NoError(err)

	msg, err := p.Send(ctx, "lobby", "alice", "")
	req.NoError(err)
	req.NotNil(msg)
	req.Empty(msg.Content)
}
