package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
)

// Membership owns room membership: lazy creation on first join, idempotent
// rejoin. The store's atomic set-add keeps concurrent joins from losing
// each other.
type Membership struct {
	rooms RoomStore
}

func NewMembership(rooms RoomStore) *Membership {
	return &Membership{rooms: rooms}
}

func (m *Membership) Join(ctx context.Context, name domain.RoomName, id domain.UserID) (*domain.Room, error) {
	if err := domain.ValidateRoomName(name); err != nil {
		return nil, err
	}
	room, err := m.rooms.AddMember(ctx, name, id)
	if err != nil {
		return nil, fmt.Errorf("join %q: %w", name, err)
	}
	log.Info().Str("module", "app.membership").Str("room", string(name)).Str("user", string(id)).Int("members", len(room.Members)).Msg("joined")
	return room, nil
}
