package app

import (
	"context"

	"github.com/dkeye/Chatter/internal/domain"
)

// UserStore is the durable identity record. SetConnection and
// ClearConnection must be atomic on the store side; managers never
// read-modify-write presence themselves.
type UserStore interface {
	Get(ctx context.Context, username string) (*domain.User, error)
	SetConnection(ctx context.Context, username string, conn domain.ConnID) (*domain.User, error)
	ClearConnection(ctx context.Context, conn domain.ConnID) (*domain.User, error)
}

// RoomStore is the durable room record. AddMember must be an atomic
// create-if-absent / set-add.
type RoomStore interface {
	Get(ctx context.Context, name domain.RoomName) (*domain.Room, error)
	AddMember(ctx context.Context, name domain.RoomName, id domain.UserID) (*domain.Room, error)
}

// MessageLog is the append-only room message record.
type MessageLog interface {
	Append(ctx context.Context, room domain.RoomName, sender string, senderID domain.UserID, content string) (*domain.Message, error)
}

// Broadcaster is the transport's subscription-group surface. Subscribing a
// handle that already closed is a no-op on the transport side; eviction on
// close is the transport's job, the coordinator never unsubscribes.
type Broadcaster interface {
	Subscribe(room domain.RoomName, id domain.ConnID)
	Broadcast(room domain.RoomName, v any)
}
