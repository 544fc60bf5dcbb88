package store

import (
	"context"
	"encoding/json"
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dkeye/Chatter/internal/domain"
)

// Rooms persists rooms keyed by name.
type Rooms struct {
	db *badger.DB
}

func NewRooms(db *badger.DB) *Rooms {
	return &Rooms{db: db}
}

func roomKey(name domain.RoomName) []byte {
	return []byte("room:" + string(name))
}

func (s *Rooms) Get(ctx context.Context, name domain.RoomName) (*domain.Room, error) {
	var room *domain.Room
	err := view(ctx, s.db, func(txn *badger.Txn) error {
		r, err := getRoom(txn, name)
		if err != nil {
			return err
		}
		room = r
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return room, err
}

// AddMember is the atomic set-add: create the room with {id} when absent,
// append when missing, and write nothing on a rejoin. Conflicting adds from
// concurrent joiners are serialized by the transaction retry, so neither
// addition is lost.
func (s *Rooms) AddMember(ctx context.Context, name domain.RoomName, id domain.UserID) (*domain.Room, error) {
	var room *domain.Room
	err := update(ctx, s.db, func(txn *badger.Txn) error {
		r, err := getRoom(txn, name)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if r, err = domain.NewRoom(name); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if r.HasMember(id) {
				room = r
				return nil
			}
		}
		r.Members = append(r.Members, id)
		if err := putRoom(txn, r); err != nil {
			return err
		}
		room = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func getRoom(txn *badger.Txn, name domain.RoomName) (*domain.Room, error) {
	item, err := txn.Get(roomKey(name))
	if err != nil {
		return nil, err
	}
	var r domain.Room
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &r)
	}); err != nil {
		return nil, err
	}
	return &r, nil
}

func putRoom(txn *badger.Txn, r *domain.Room) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return txn.Set(roomKey(r.Name), data)
}
