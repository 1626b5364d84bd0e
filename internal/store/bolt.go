package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// entry is one key-value pair as stored by bolthold
type entry struct {
	Key       string `boltholdKey:"Key"`
	Value     string
	UpdatedAt time.Time
}

// BoltKV wraps a bolthold store
type BoltKV struct {
	store *bolthold.Store
}

// OpenBolt opens (or creates) the bolt database at path
func OpenBolt(path string) (*BoltKV, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BoltKV{store: store}, nil
}

// Close closes the database connection
func (db *BoltKV) Close() error {
	return db.store.Close()
}

// Get retrieves the value stored under key
func (db *BoltKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var e entry
	err := db.store.Get(key, &e)
	if errors.Is(err, bolthold.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &models.StorageError{Op: "get", Key: key, Err: err}
	}
	return e.Value, true, nil
}

// Put stores value under key, replacing any previous value
func (db *BoltKV) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := db.store.Upsert(key, &e); err != nil {
		return &models.StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Update reads, transforms and writes key inside a single bolt write
// transaction, so concurrent updates cannot lose each other's writes.
func (db *BoltKV) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var e entry
		found := true
		if err := db.store.TxGet(tx, key, &e); err != nil {
			if !errors.Is(err, bolthold.ErrNotFound) {
				return err
			}
			found = false
		}

		next, err := fn(e.Value, found)
		if err != nil {
			return err
		}

		e.Key = key
		e.Value = next
		e.UpdatedAt = time.Now()
		return db.store.TxUpsert(tx, key, &e)
	})
	if err != nil {
		var se *models.StorageError
		if errors.As(err, &se) {
			return err
		}
		return &models.StorageError{Op: "update", Key: key, Err: err}
	}
	return nil
}
