package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/sirupsen/logrus"
)

// FavoritesStore keeps the bookmarked items as a JSON array under FavoritesKey
type FavoritesStore struct {
	kv     KeyValue
	logger *logrus.Logger
}

// NewFavoritesStore creates a favorites store on top of kv
func NewFavoritesStore(kv KeyValue, logger *logrus.Logger) *FavoritesStore {
	return &FavoritesStore{kv: kv, logger: logger}
}

// List returns all favorites in insertion order.
// A corrupt blob reads as an empty list.
func (s *FavoritesStore) List(ctx context.Context) ([]models.FavoriteRecord, error) {
	raw, _, err := s.kv.Get(ctx, FavoritesKey)
	if err != nil {
		return nil, err
	}
	return s.decode(raw), nil
}

// Add appends rec unless a record with the same ID is already stored.
// It reports whether the list changed.
func (s *FavoritesStore) Add(ctx context.Context, rec models.FavoriteRecord) (bool, error) {
	added := false
	err := s.kv.Update(ctx, FavoritesKey, func(current string, _ bool) (string, error) {
		records := s.decode(current)
		for _, r := range records {
			if r.ID == rec.ID {
				return encode(records)
			}
		}
		added = true
		return encode(append(records, rec))
	})
	if err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":    rec.ID,
		"added": added,
	}).Debug("Favorite add")
	return added, nil
}

// RemoveByID deletes the record with the given ID and reports whether one existed
func (s *FavoritesStore) RemoveByID(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.kv.Update(ctx, FavoritesKey, func(current string, _ bool) (string, error) {
		records := s.decode(current)
		kept := records[:0]
		for _, r := range records {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		return encode(kept)
	})
	if err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":      id,
		"removed": removed,
	}).Debug("Favorite remove")
	return removed, nil
}

func (s *FavoritesStore) decode(raw string) []models.FavoriteRecord {
	if raw == "" {
		return []models.FavoriteRecord{}
	}

	var records []models.FavoriteRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.WithError(err).Warn("Favorites blob is corrupt, treating as empty")
		return []models.FavoriteRecord{}
	}
	if records == nil {
		records = []models.FavoriteRecord{}
	}
	return records
}

func encode(records []models.FavoriteRecord) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode favorites: %w", err)
	}
	return string(data), nil
}
