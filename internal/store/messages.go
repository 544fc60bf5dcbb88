package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dkeye/Chatter/internal/domain"
)

// Messages is the append-only room log.
//
// Keys are "msg:{room}:{timestamp_padded}:{uuid}":
//  1. 19-digit zero padding keeps lexicographical order chronological.
//  2. The uuid disambiguates two messages landing on the same nanosecond.
type Messages struct {
	db *badger.DB
}

func NewMessages(db *badger.DB) *Messages {
	return &Messages{db: db}
}

func messageKey(m *domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.Room, m.At.UnixNano(), m.ID))
}

// Append persists a new message. The timestamp is assigned here, at
// persistence time.
func (s *Messages) Append(ctx context.Context, room domain.RoomName, sender string, senderID domain.UserID, content string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:       domain.MessageID(uuid.NewString()),
		Room:     room,
		Sender:   sender,
		SenderID: senderID,
		Content:  content,
		At:       time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	err = update(ctx, s.db, func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg), data)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns up to limit messages for a room, newest first. limit <= 0
// means no limit.
func (s *Messages) List(ctx context.Context, room domain.RoomName, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := view(ctx, s.db, func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this prefix, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			var m domain.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
