// Package store holds the badger-backed durable records: users, rooms and
// the append-only message log. Each mutating operation is a single
// transaction, so concurrent writers rely on the store, not on client-side
// locking.
package store

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("record not found")

func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

// update runs fn in a read-write transaction and retries on commit
// conflicts. Retrying here is what turns a read-modify-write body into an
// atomic upsert/set-add for the callers; managers above never retry.
func update(ctx context.Context, db *badger.DB, fn func(*badger.Txn) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

func view(ctx context.Context, db *badger.DB, fn func(*badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}
