package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
	"github.com/dkeye/Chatter/internal/store"
)

// Presence owns the online/offline state machine. Policy is
// last-writer-wins: a second attach for the same username silently migrates
// presence to the newest connection.
type Presence struct {
	users UserStore
}

func NewPresence(users UserStore) *Presence {
	return &Presence{users: users}
}

// Attach upserts the identity for username and binds it to conn. Store I/O
// errors come back wrapped; no retry happens here.
func (p *Presence) Attach(ctx context.Context, username string, conn domain.ConnID) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	user, err := p.users.SetConnection(ctx, username, conn)
	if err != nil {
		return nil, fmt.Errorf("attach %q: %w", username, err)
	}
	log.Info().Str("module", "app.presence").Str("user", username).Str("conn", string(conn)).Msg("attached")
	return user, nil
}

// Detach takes offline the identity whose stored handle equals conn.
// Returns (nil, nil) when the handle never attached or was superseded by a
// later Attach; the currently-online record stays untouched.
func (p *Presence) Detach(ctx context.Context, conn domain.ConnID) (*domain.User, error) {
	user, err := p.users.ClearConnection(ctx, conn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("detach %s: %w", conn, err)
	}
	log.Info().Str("module", "app.presence").Str("user", user.Username).Str("conn", string(conn)).Msg("detached")
	return user, nil
}
