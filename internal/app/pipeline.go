package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
	"github.com/dkeye/Chatter/internal/store"
)

// Pipeline validates and persists inbound messages before fan-out.
type Pipeline struct {
	users    UserStore
	rooms    RoomStore
	messages MessageLog
}

func NewPipeline(users UserStore, rooms RoomStore, messages MessageLog) *Pipeline {
	return &Pipeline{users: users, rooms: rooms, messages: messages}
}

// Send resolves sender and room, then appends the message to the log.
// An unknown sender or room returns (nil, nil): the send is dropped without
// surfacing an error to the client. The drop is logged, never silent in the
// logs. Content is stored as-is, empty included.
func (p *Pipeline) Send(ctx context.Context, room domain.RoomName, sender, content string) (*domain.Message, error) {
	user, err := p.users.Get(ctx, sender)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("module", "app.pipeline").Str("sender", sender).Str("room", string(room)).Msg("unknown sender, message dropped")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve sender %q: %w", sender, err)
	}
	if _, err := p.rooms.Get(ctx, room); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn().Str("module", "app.pipeline").Str("sender", sender).Str("room", string(room)).Msg("unknown room, message dropped")
			return nil, nil
		}
		return nil, fmt.Errorf("resolve room %q: %w", room, err)
	}
	msg, err := p.messages.Append(ctx, room, user.Username, user.ID, content)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}
