package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for dismissal storage. Full key: dismissed:<sessionID>:<bookID>.
const dismissedPrefix = "dismissed:"

// NotInterested is a session-scoped dismissal set persisted in Badger. It
// satisfies the discovery engine's NotInterestedStore, so a session's
// dismissals survive a restart when the store runs on disk.
type NotInterested struct {
	store     *Store
	sessionID string
}

// NotInterestedForSession binds a persistent dismissal set to one session.
func (s *Store) NotInterestedForSession(sessionID string) *NotInterested {
	return &NotInterested{store: s, sessionID: sessionID}
}

func (n *NotInterested) key(id string) []byte {
	return []byte(dismissedPrefix + n.sessionID + ":" + id)
}

// Add records a dismissal. Adding an id twice is a no-op.
func (n *NotInterested) Add(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return n.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(n.key(id), []byte{})
	})
}

// Contains reports whether an id was dismissed.
func (n *NotInterested) Contains(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := n.store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(n.key(id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IDs returns a snapshot of all dismissed ids for the session.
func (n *NotInterested) IDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := dismissedPrefix + n.sessionID + ":"
	ids := []string{}

	err := n.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteSession removes every dismissal recorded for a session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := dismissedPrefix + sessionID + ":"
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}
