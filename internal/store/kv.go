// Package store persists favorites and the last search keyword in a local
// key-value store.
package store

import (
	"context"
	"fmt"

	"github.com/amaumene/imagesearch/internal/config"
	"github.com/sirupsen/logrus"
)

// Keys used in the key-value store
const (
	FavoritesKey = "favorite_items"
	KeywordKey   = "search_keyword"
)

// KeyValue is a string-keyed store of string values.
// Update must run fn and write its result atomically with respect to other
// Update calls on the same store.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error
	Close() error
}

// Open opens the backend selected by cfg.StorageDriver
func Open(cfg *config.Config, logger *logrus.Logger) (KeyValue, error) {
	switch cfg.StorageDriver {
	case config.StorageBolt:
		logger.WithField("path", cfg.BoltFile).Debug("Opening bolt store")
		kv, err := OpenBolt(cfg.BoltFile)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.StorageSQLite:
		logger.WithField("path", cfg.SQLiteFile).Debug("Opening sqlite store")
		kv, err := OpenSQLite(cfg.SQLiteFile)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
