package store

import (
	"context"
	"encoding/json"
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dkeye/Chatter/internal/domain"
)

// Users persists identities keyed by username. A secondary index
// conn:<handle> -> username is kept in the same transaction as every handle
// change, so lookup-by-connection stays consistent with the record itself.
type Users struct {
	db *badger.DB
}

func NewUsers(db *badger.DB) *Users {
	return &Users{db: db}
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

func connKey(id domain.ConnID) []byte {
	return []byte("conn:" + string(id))
}

func (s *Users) Get(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := view(ctx, s.db, func(txn *badger.Txn) error {
		u, err := getUser(txn, username)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

// SetConnection is the atomic presence upsert: create-if-absent, or
// overwrite the stored handle and mark the user online. The previous
// handle's index entry is removed in the same transaction, which is what
// makes a later detach of a superseded handle a clean miss.
func (s *Users) SetConnection(ctx context.Context, username string, conn domain.ConnID) (*domain.User, error) {
	var user *domain.User
	err := update(ctx, s.db, func(txn *badger.Txn) error {
		u, err := getUser(txn, username)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if u, err = domain.NewUser(username); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if u.Conn != "" && u.Conn != conn {
				if err := txn.Delete(connKey(u.Conn)); err != nil {
					return err
				}
			}
		}
		u.Conn = conn
		u.Online = true
		if err := putUser(txn, u); err != nil {
			return err
		}
		if err := txn.Set(connKey(conn), []byte(username)); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ClearConnection resolves the handle index and takes the user offline.
// Returns ErrNotFound when the handle never attached or was already
// superseded by a later SetConnection; the current record is left untouched
// in that case.
func (s *Users) ClearConnection(ctx context.Context, conn domain.ConnID) (*domain.User, error) {
	var user *domain.User
	err := update(ctx, s.db, func(txn *badger.Txn) error {
		item, err := txn.Get(connKey(conn))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var username string
		if err := item.Value(func(val []byte) error {
			username = string(val)
			return nil
		}); err != nil {
			return err
		}
		u, err := getUser(txn, username)
		if err != nil {
			return err
		}
		if u.Conn != conn {
			// Stale index entry; the record already moved on.
			if err := txn.Delete(connKey(conn)); err != nil {
				return err
			}
			return ErrNotFound
		}
		u.Conn = ""
		u.Online = false
		if err := putUser(txn, u); err != nil {
			return err
		}
		if err := txn.Delete(connKey(conn)); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func getUser(txn *badger.Txn, username string) (*domain.User, error) {
	item, err := txn.Get(userKey(username))
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &u)
	}); err != nil {
		return nil, err
	}
	return &u, nil
}

func putUser(txn *badger.Txn, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return txn.Set(userKey(u.Username), data)
}
